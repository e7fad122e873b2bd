package view

import (
	"fmt"
	"strconv"

	"moreyou/storefront/internal/domain"
)

const (
	placeholderImage = "images/placeholder-product.jpg"
	emptyBagMessage  = "Your bag is empty."
)

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
	"AUD": "A$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// FormatPrice renders a money value the way the storefront displays it:
// symbol-prefixed with two decimals, falling back to "CODE amount" for
// currencies without a known symbol. A zero value renders as "$0.00".
func FormatPrice(m domain.Money) string {
	if m.CurrencyCode == "" {
		return "$" + m.Amount.StringFixed(2)
	}
	symbol, ok := currencySymbols[m.CurrencyCode]
	if !ok {
		return m.CurrencyCode + " " + m.Amount.StringFixed(2)
	}
	if m.CurrencyCode == "JPY" {
		return symbol + m.Amount.StringFixed(0)
	}
	return symbol + m.Amount.StringFixed(2)
}

// CartView is the cart drawer's view model.
type CartView struct {
	Empty        bool
	Message      string
	Items        []CartItemView
	SubtotalText string
	Badge        string
	CheckoutURL  string
}

type CartItemView struct {
	LineID       string
	Title        string
	VariantTitle string
	Quantity     int
	ImageURL     string
	ImageAlt     string
	PriceText    string
}

type ProductCardView struct {
	Handle    string
	Title     string
	URL       string
	ImageURL  string
	ImageAlt  string
	PriceText string
}

type OptionValueView struct {
	Value    string
	Selected bool
}

type ProductPageView struct {
	Handle        string
	Title         string
	Description   string
	PriceText     string
	MainImageURL  string
	MainImageAlt  string
	SizeOptions   []OptionValueView
	AddToCartID   string // variant the add-to-cart control submits by default
	CanAddToCart  bool
}

type CollectionView struct {
	Title       string
	Description string
	Cards       []ProductCardView
}

// Projector turns domain snapshots into view models. Pure and deterministic:
// the same snapshot always projects to the same view.
type Projector struct{}

func NewProjector() *Projector {
	return &Projector{}
}

// ProjectCart builds the drawer view. The badge is the sum of line quantities
// and the subtotal is the server-supplied amount; no totals are computed
// locally.
func (p *Projector) ProjectCart(cart *domain.Cart) CartView {
	if cart.IsEmpty() {
		view := CartView{
			Empty:        true,
			Message:      emptyBagMessage,
			SubtotalText: "$0.00",
			Badge:        "0",
		}
		if cart != nil {
			view.CheckoutURL = cart.CheckoutURL
		}
		return view
	}

	items := make([]CartItemView, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, p.projectCartItem(line))
	}

	return CartView{
		Items:        items,
		SubtotalText: FormatPrice(cart.Subtotal),
		Badge:        strconv.Itoa(cart.TotalQuantity()),
		CheckoutURL:  cart.CheckoutURL,
	}
}

func (p *Projector) projectCartItem(line domain.CartLine) CartItemView {
	merch := line.Merchandise

	// Partial-success responses may omit the owning product; degrade to the
	// variant title instead of rendering a hole.
	title := merch.ProductTitle
	if title == "" {
		title = merch.Title
	}

	imageURL := merch.Image.URL
	if imageURL == "" {
		imageURL = placeholderImage
	}
	imageAlt := merch.Image.AltText
	if imageAlt == "" {
		imageAlt = title
	}

	return CartItemView{
		LineID:       line.ID,
		Title:        title,
		VariantTitle: merch.Title,
		Quantity:     line.Quantity,
		ImageURL:     imageURL,
		ImageAlt:     imageAlt,
		PriceText:    FormatPrice(line.Total),
	}
}

func (p *Projector) ProjectProductCard(product domain.Product) ProductCardView {
	imageURL := product.FeaturedImage.URL
	if imageURL == "" {
		imageURL = placeholderImage
	}
	imageAlt := product.FeaturedImage.AltText
	if imageAlt == "" {
		imageAlt = product.Title
	}

	return ProductCardView{
		Handle:    product.Handle,
		Title:     product.Title,
		URL:       fmt.Sprintf("/product?handle=%s", product.Handle),
		ImageURL:  imageURL,
		ImageAlt:  imageAlt,
		PriceText: FormatPrice(product.MinPrice),
	}
}

func (p *Projector) ProjectProductCards(products []domain.Product) []ProductCardView {
	cards := make([]ProductCardView, 0, len(products))
	for _, product := range products {
		cards = append(cards, p.ProjectProductCard(product))
	}
	return cards
}

// ProjectProductPage builds the product page view with the first value of the
// Size option preselected, matching the storefront's default selection.
func (p *Projector) ProjectProductPage(product *domain.Product) ProductPageView {
	view := ProductPageView{
		Handle:      product.Handle,
		Title:       product.Title,
		Description: product.Description,
	}

	if v := product.FirstVariant(); v != nil {
		view.PriceText = FormatPrice(v.Price)
		view.AddToCartID = v.ID
		view.CanAddToCart = true
	} else {
		view.PriceText = FormatPrice(product.MinPrice)
	}

	view.MainImageURL = product.FeaturedImage.URL
	if view.MainImageURL == "" {
		view.MainImageURL = placeholderImage
	}
	view.MainImageAlt = product.FeaturedImage.AltText
	if view.MainImageAlt == "" {
		view.MainImageAlt = product.Title
	}

	if sizeOption := product.Option("size"); sizeOption != nil {
		for i, value := range sizeOption.Values {
			view.SizeOptions = append(view.SizeOptions, OptionValueView{
				Value:    value,
				Selected: i == 0,
			})
		}
	}

	return view
}

func (p *Projector) ProjectCollection(collection *domain.Collection) CollectionView {
	return CollectionView{
		Title:       collection.Title,
		Description: collection.Description,
		Cards:       p.ProjectProductCards(collection.Products),
	}
}
