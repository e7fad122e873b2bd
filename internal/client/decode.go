package client

import (
	"fmt"

	"moreyou/storefront/internal/domain"
)

// Wire payloads mirroring the GraphQL response shape. Every nested pointer is
// nil-checked during decoding: the platform's partial-success policy means any
// field can legally be null, and holes must never leak into domain values.

type moneyPayload struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type imagePayload struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type edge[T any] struct {
	Node T `json:"node"`
}

type connection[T any] struct {
	Edges []edge[T] `json:"edges"`
}

type selectedOptionPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type merchandisePayload struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	AvailableForSale bool                    `json:"availableForSale"`
	Price            *moneyPayload           `json:"price"`
	SelectedOptions  []selectedOptionPayload `json:"selectedOptions"`
	Product          *struct {
		Title  string `json:"title"`
		Handle string `json:"handle"`
	} `json:"product"`
	Image *imagePayload `json:"image"`
}

type cartLinePayload struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Cost     *struct {
		TotalAmount *moneyPayload `json:"totalAmount"`
	} `json:"cost"`
	Merchandise *merchandisePayload `json:"merchandise"`
}

type cartPayload struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
	Cost        *struct {
		SubtotalAmount *moneyPayload `json:"subtotalAmount"`
	} `json:"cost"`
	Lines *connection[cartLinePayload] `json:"lines"`
}

type variantPayload struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	AvailableForSale bool                    `json:"availableForSale"`
	Price            *moneyPayload           `json:"price"`
	SelectedOptions  []selectedOptionPayload `json:"selectedOptions"`
}

type productPayload struct {
	ID            string        `json:"id"`
	Handle        string        `json:"handle"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	FeaturedImage *imagePayload `json:"featuredImage"`
	Images        *connection[imagePayload] `json:"images"`
	Options       []struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	} `json:"options"`
	Variants   *connection[variantPayload] `json:"variants"`
	PriceRange *struct {
		MinVariantPrice *moneyPayload `json:"minVariantPrice"`
	} `json:"priceRange"`
}

type collectionPayload struct {
	Handle      string                      `json:"handle"`
	Title       string                      `json:"title"`
	Description string                      `json:"description"`
	Products    *connection[productPayload] `json:"products"`
}

func decodeMoney(p *moneyPayload) (domain.Money, error) {
	if p == nil || p.Amount == "" {
		return domain.Money{}, nil
	}
	m, err := domain.NewMoney(p.Amount, p.CurrencyCode)
	if err != nil {
		return domain.Money{}, fmt.Errorf("malformed amount %q: %w", p.Amount, err)
	}
	return m, nil
}

func decodeImage(p *imagePayload) domain.Image {
	if p == nil {
		return domain.Image{}
	}
	return domain.Image{URL: p.URL, AltText: p.AltText}
}

func decodeSelectedOptions(opts []selectedOptionPayload) []domain.SelectedOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]domain.SelectedOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, domain.SelectedOption{Name: o.Name, Value: o.Value})
	}
	return out
}

func decodeCart(p *cartPayload) (*domain.Cart, error) {
	if p == nil || p.ID == "" {
		return nil, ErrNotFound
	}

	cart := &domain.Cart{
		ID:          p.ID,
		CheckoutURL: p.CheckoutURL,
	}

	if p.Cost != nil {
		subtotal, err := decodeMoney(p.Cost.SubtotalAmount)
		if err != nil {
			return nil, fmt.Errorf("cart subtotal: %w", err)
		}
		cart.Subtotal = subtotal
	}

	if p.Lines != nil {
		cart.Lines = make([]domain.CartLine, 0, len(p.Lines.Edges))
		for _, e := range p.Lines.Edges {
			line, err := decodeCartLine(e.Node)
			if err != nil {
				return nil, err
			}
			cart.Lines = append(cart.Lines, line)
		}
	}

	return cart, nil
}

func decodeCartLine(p cartLinePayload) (domain.CartLine, error) {
	line := domain.CartLine{
		ID:       p.ID,
		Quantity: p.Quantity,
	}

	if p.Cost != nil {
		total, err := decodeMoney(p.Cost.TotalAmount)
		if err != nil {
			return domain.CartLine{}, fmt.Errorf("line %s total: %w", p.ID, err)
		}
		line.Total = total
	}

	if m := p.Merchandise; m != nil {
		price, err := decodeMoney(m.Price)
		if err != nil {
			return domain.CartLine{}, fmt.Errorf("line %s variant price: %w", p.ID, err)
		}
		line.Merchandise = domain.Merchandise{
			VariantID:       m.ID,
			Title:           m.Title,
			Image:           decodeImage(m.Image),
			SelectedOptions: decodeSelectedOptions(m.SelectedOptions),
			Price:           price,
			Available:       m.AvailableForSale,
		}
		// A null owning product is legal under partial-success responses;
		// the projector falls back to the variant title.
		if m.Product != nil {
			line.Merchandise.ProductTitle = m.Product.Title
			line.Merchandise.ProductHandle = m.Product.Handle
		}
	}

	return line, nil
}

func decodeProduct(p *productPayload) (*domain.Product, error) {
	if p == nil || p.ID == "" {
		return nil, ErrNotFound
	}

	product := &domain.Product{
		ID:            p.ID,
		Handle:        p.Handle,
		Title:         p.Title,
		Description:   p.Description,
		FeaturedImage: decodeImage(p.FeaturedImage),
	}

	if p.Images != nil {
		for _, e := range p.Images.Edges {
			img := e.Node
			product.Images = append(product.Images, decodeImage(&img))
		}
	}

	for _, o := range p.Options {
		product.Options = append(product.Options, domain.ProductOption{Name: o.Name, Values: o.Values})
	}

	if p.Variants != nil {
		for _, e := range p.Variants.Edges {
			price, err := decodeMoney(e.Node.Price)
			if err != nil {
				return nil, fmt.Errorf("product %s variant price: %w", p.Handle, err)
			}
			product.Variants = append(product.Variants, domain.Variant{
				ID:              e.Node.ID,
				Title:           e.Node.Title,
				Available:       e.Node.AvailableForSale,
				Price:           price,
				SelectedOptions: decodeSelectedOptions(e.Node.SelectedOptions),
			})
		}
	}

	if p.PriceRange != nil {
		minPrice, err := decodeMoney(p.PriceRange.MinVariantPrice)
		if err != nil {
			return nil, fmt.Errorf("product %s min price: %w", p.Handle, err)
		}
		product.MinPrice = minPrice
	}
	if product.MinPrice.IsZero() {
		if v := product.FirstVariant(); v != nil {
			product.MinPrice = v.Price
		}
	}

	return product, nil
}

func decodeCollection(p *collectionPayload) (*domain.Collection, error) {
	if p == nil || p.Title == "" && p.Handle == "" {
		return nil, ErrNotFound
	}

	collection := &domain.Collection{
		Handle:      p.Handle,
		Title:       p.Title,
		Description: p.Description,
	}

	if p.Products != nil {
		collection.Products = make([]domain.Product, 0, len(p.Products.Edges))
		for _, e := range p.Products.Edges {
			node := e.Node
			product, err := decodeProduct(&node)
			if err != nil {
				if err == ErrNotFound {
					continue
				}
				return nil, err
			}
			collection.Products = append(collection.Products, *product)
		}
	}

	return collection, nil
}
