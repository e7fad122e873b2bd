package domain

import "strings"

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductOption is a configurable axis of a product, e.g. Size with
// values S/M/L.
type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type Variant struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Available       bool             `json:"available"`
	Price           Money            `json:"price"`
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`
}

type Product struct {
	ID            string          `json:"id"`
	Handle        string          `json:"handle"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	FeaturedImage Image           `json:"featured_image"`
	Images        []Image         `json:"images,omitempty"`
	Options       []ProductOption `json:"options,omitempty"`
	Variants      []Variant       `json:"variants,omitempty"`
	MinPrice      Money           `json:"min_price"`
}

// Option looks up a product option by name, case-insensitively.
func (p *Product) Option(name string) *ProductOption {
	for i := range p.Options {
		if strings.EqualFold(p.Options[i].Name, name) {
			return &p.Options[i]
		}
	}
	return nil
}

func (p *Product) FirstVariant() *Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	return &p.Variants[0]
}

// VariantBySelectedOption resolves the variant matching one selected option
// value, falling back to the first variant when nothing matches.
func (p *Product) VariantBySelectedOption(name, value string) *Variant {
	if value == "" {
		return p.FirstVariant()
	}
	for i := range p.Variants {
		for _, opt := range p.Variants[i].SelectedOptions {
			if strings.EqualFold(opt.Name, name) && opt.Value == value {
				return &p.Variants[i]
			}
		}
	}
	return p.FirstVariant()
}
