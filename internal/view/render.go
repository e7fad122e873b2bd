package view

import (
	"fmt"
	"html/template"
	"strings"
)

const fragmentTemplates = `
{{define "product-card"}}
<a href="{{.URL}}" class="product-card">
  <div class="product-card-media">
    <img src="{{.ImageURL}}" alt="{{.ImageAlt}}">
  </div>
  <div class="product-card-body">
    <p class="product-card-title">{{.Title}}</p>
    <p class="product-card-price">{{.PriceText}}</p>
  </div>
</a>
{{end}}

{{define "product-grid"}}
{{range .}}{{template "product-card" .}}{{end}}
{{end}}

{{define "cart-items"}}
{{if .Empty}}<p>{{.Message}}</p>{{else}}
{{range .Items}}
<div class="cart-item" data-line-id="{{.LineID}}">
  <img src="{{.ImageURL}}" alt="{{.ImageAlt}}">
  <div>
    <p class="cart-item-title">{{.Title}}</p>
    <p class="cart-item-meta">{{.VariantTitle}}</p>
    <div class="cart-item-qty">
      <button class="qty-button" data-qty-change="-1">-</button>
      <span>{{.Quantity}}</span>
      <button class="qty-button" data-qty-change="1">+</button>
    </div>
  </div>
  <div class="cart-item-price">{{.PriceText}}</div>
</div>
{{end}}
{{end}}
{{end}}

{{define "cart-drawer"}}
<div class="cart-drawer" data-cart-drawer>
  <div data-cart-items>{{template "cart-items" .}}</div>
  <p class="cart-subtotal" data-cart-subtotal>{{.SubtotalText}}</p>
  <span class="cart-count" data-cart-count>{{.Badge}}</span>
</div>
{{end}}

{{define "product-page"}}
<div class="product-page" data-product-handle="{{.Handle}}">
  <div class="product-media" data-product-media>
    <img src="{{.MainImageURL}}" alt="{{.MainImageAlt}}" class="product-main-image">
  </div>
  <h1 data-product-title>{{.Title}}</h1>
  <p class="product-price" data-product-price>{{.PriceText}}</p>
  <p class="product-description" data-product-description>{{.Description}}</p>
  {{if .SizeOptions}}
  <div class="product-options" data-option-values>
    {{range .SizeOptions}}
    <button class="option-button{{if .Selected}} is-selected{{end}}" data-size-value="{{.Value}}">{{.Value}}</button>
    {{end}}
  </div>
  {{end}}
  <button class="add-to-cart" data-add-to-cart data-variant-id="{{.AddToCartID}}"{{if not .CanAddToCart}} disabled{{end}}>Add to bag</button>
</div>
{{end}}

{{define "collection-page"}}
<h1 data-collection-title>{{.Title}}</h1>
<div class="product-grid" data-collection-grid>
{{if .Cards}}{{template "product-grid" .Cards}}{{else}}<p>No products available yet.</p>{{end}}
</div>
{{end}}
`

// Renderer produces HTML fragments from view models.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		templates: template.Must(template.New("storefront").Parse(fragmentTemplates)),
	}
}

func (r *Renderer) render(name string, data any) (string, error) {
	var buf strings.Builder
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) ProductGrid(cards []ProductCardView) (string, error) {
	return r.render("product-grid", cards)
}

func (r *Renderer) CartItems(view CartView) (string, error) {
	return r.render("cart-items", view)
}

func (r *Renderer) CartDrawer(view CartView) (string, error) {
	return r.render("cart-drawer", view)
}

func (r *Renderer) ProductPage(view ProductPageView) (string, error) {
	return r.render("product-page", view)
}

func (r *Renderer) CollectionPage(view CollectionView) (string, error) {
	return r.render("collection-page", view)
}
