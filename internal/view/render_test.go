package view

import (
	"strings"
	"testing"

	"moreyou/storefront/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFragment(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRenderCartItems(t *testing.T) {
	projector := NewProjector()
	renderer := NewRenderer()

	cart := &domain.Cart{
		ID:       "cart-1",
		Subtotal: usd("35.00"),
		Lines: []domain.CartLine{
			{ID: "line-1", Quantity: 2, Total: usd("20.00"), Merchandise: domain.Merchandise{Title: "M", ProductTitle: "Hoodie"}},
			{ID: "line-2", Quantity: 1, Total: usd("15.00"), Merchandise: domain.Merchandise{Title: "L", ProductTitle: "Tee"}},
		},
	}

	html, err := renderer.CartItems(projector.ProjectCart(cart))
	require.NoError(t, err)
	doc := parseFragment(t, html)

	items := doc.Find(".cart-item")
	require.Equal(t, 2, items.Length())

	first := items.First()
	lineID, _ := first.Attr("data-line-id")
	assert.Equal(t, "line-1", lineID)
	assert.Equal(t, "Hoodie", first.Find(".cart-item-title").Text())
	assert.Equal(t, "M", first.Find(".cart-item-meta").Text())
	assert.Equal(t, "2", first.Find(".cart-item-qty span").Text())
	assert.Equal(t, "$20.00", strings.TrimSpace(first.Find(".cart-item-price").Text()))

	// Both stepper buttons present per line.
	assert.Equal(t, 4, doc.Find("[data-qty-change]").Length())
}

func TestRenderCartDrawerEmptyState(t *testing.T) {
	renderer := NewRenderer()

	html, err := renderer.CartDrawer(NewProjector().ProjectCart(nil))
	require.NoError(t, err)
	doc := parseFragment(t, html)

	assert.Contains(t, doc.Find("[data-cart-items]").Text(), "Your bag is empty.")
	assert.Equal(t, "$0.00", strings.TrimSpace(doc.Find("[data-cart-subtotal]").Text()))
	assert.Equal(t, "0", strings.TrimSpace(doc.Find("[data-cart-count]").Text()))
}

func TestRenderProductGrid(t *testing.T) {
	projector := NewProjector()
	renderer := NewRenderer()

	products := []domain.Product{
		{Handle: "hoodie", Title: "Hoodie", MinPrice: usd("20.00")},
		{Handle: "tee", Title: "Tee", MinPrice: usd("15.00")},
	}

	html, err := renderer.ProductGrid(projector.ProjectProductCards(products))
	require.NoError(t, err)
	doc := parseFragment(t, html)

	cards := doc.Find(".product-card")
	require.Equal(t, 2, cards.Length())

	href, _ := cards.First().Attr("href")
	assert.Equal(t, "/product?handle=hoodie", href)
	assert.Equal(t, "Hoodie", cards.First().Find(".product-card-title").Text())
	assert.Equal(t, "$20.00", cards.First().Find(".product-card-price").Text())
}

func TestRenderProductPage(t *testing.T) {
	projector := NewProjector()
	renderer := NewRenderer()

	product := &domain.Product{
		Handle: "hoodie",
		Title:  "Hoodie",
		Options: []domain.ProductOption{
			{Name: "Size", Values: []string{"S", "M"}},
		},
		Variants: []domain.Variant{
			{ID: "variant-s", Price: usd("20.00"), SelectedOptions: []domain.SelectedOption{{Name: "Size", Value: "S"}}},
		},
	}

	html, err := renderer.ProductPage(projector.ProjectProductPage(product))
	require.NoError(t, err)
	doc := parseFragment(t, html)

	assert.Equal(t, "Hoodie", doc.Find("[data-product-title]").Text())
	assert.Equal(t, "$20.00", doc.Find("[data-product-price]").Text())

	options := doc.Find("[data-size-value]")
	require.Equal(t, 2, options.Length())
	assert.True(t, options.First().HasClass("is-selected"))

	variantID, _ := doc.Find("[data-add-to-cart]").Attr("data-variant-id")
	assert.Equal(t, "variant-s", variantID)
}

func TestRenderCollectionPageEmpty(t *testing.T) {
	renderer := NewRenderer()

	html, err := renderer.CollectionPage(CollectionView{Title: "Shop All"})
	require.NoError(t, err)
	doc := parseFragment(t, html)

	assert.Equal(t, "Shop All", doc.Find("[data-collection-title]").Text())
	assert.Contains(t, doc.Find("[data-collection-grid]").Text(), "No products available yet.")
}
