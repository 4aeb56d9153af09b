package model

import "strings"

// Money is a currency amount split into whole units and nano units, so the
// stored value never passes through a float.
type Money struct {
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos" validate:"gte=0,lt=1000000000"`
	CurrencyCode string `json:"currency_code" validate:"required,iso4217"`
}

// Float returns units + nanos/1e9 for comparison against price bounds.
func (m Money) Float() float64 {
	return float64(m.Units) + float64(m.Nanos)/1_000_000_000
}

// Product is a read-only catalog entry.
type Product struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Picture     string   `json:"picture,omitempty"`
	Price       Money    `json:"price_usd"`
	Categories  []string `json:"categories,omitempty"`
}

// Contains reports whether the lower-cased needle occurs in the product's
// id, name or description.
func (p *Product) Contains(needle string) bool {
	needle = strings.ToLower(needle)
	return strings.Contains(strings.ToLower(p.ID), needle) ||
		strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}
