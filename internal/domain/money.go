package domain

import "github.com/shopspring/decimal"

// Money is a server-computed amount in a specific currency. The storefront
// platform owns all price math; the client never derives amounts locally.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
}

func NewMoney(amount string, currencyCode string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: d, CurrencyCode: currencyCode}, nil
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}
