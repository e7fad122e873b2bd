package domain

// Cart is the last-known-good snapshot of the remote cart. It is replaced
// wholesale after every successful fetch or mutation, never patched in place,
// so local state can never diverge from the server-computed totals.
type Cart struct {
	ID          string     `json:"id"`
	CheckoutURL string     `json:"checkout_url"`
	Subtotal    Money      `json:"subtotal"`
	Lines       []CartLine `json:"lines"`
}

// CartLine is one (variant, quantity) entry. Quantity is always >= 1; the
// platform removes a line entirely instead of holding a zero quantity.
type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Total       Money       `json:"total"`
	Merchandise Merchandise `json:"merchandise"`
}

// Merchandise describes the purchasable variant behind a cart line.
// Read-only from the client's perspective.
type Merchandise struct {
	VariantID       string           `json:"variant_id"`
	Title           string           `json:"title"`
	ProductTitle    string           `json:"product_title"`
	ProductHandle   string           `json:"product_handle"`
	Image           Image            `json:"image"`
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`
	Price           Money            `json:"price"`
	Available       bool             `json:"available"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// TotalQuantity sums line quantities for the cart badge.
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// LineByID returns the line with the given id, or nil.
func (c *Cart) LineByID(lineID string) *CartLine {
	if c == nil {
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}
