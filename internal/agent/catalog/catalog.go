// Package catalog resolves free-text and demographic queries to product
// identifiers. Backends are interchangeable behind the Catalog interface.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shoppingmate-ai/server/internal/agent/model"
)

const DefaultCurrency = "USD"

// ErrProductNotFound is returned by Lookup for unknown identifiers.
var ErrProductNotFound = errors.New("product not found")

// SearchParams is one catalog query. Zero values mean "no constraint".
type SearchParams struct {
	// Query has price phrases removed; keyword backends match on it.
	Query string
	// Text is the query as the user wrote it. Semantic backends embed it.
	Text     string
	PriceMin *float64
	PriceMax *float64
	Currency string // defaults to USD

	Gender      string
	Age         *int
	Preferences string
}

// IsGift reports whether any gift filter is set.
func (p SearchParams) IsGift() bool {
	return p.Gender != "" || (p.Age != nil && *p.Age != 0) || p.Preferences != ""
}

// SemanticText is the text an embedding backend should encode.
func (p SearchParams) SemanticText() string {
	if p.Text != "" {
		return p.Text
	}
	return p.Query
}

func (p SearchParams) currency() string {
	if p.Currency == "" {
		return DefaultCurrency
	}
	return p.Currency
}

// PriceMatches applies the price-bound filter shared by all backends: with no
// bound every price passes; with a bound the price must satisfy it and carry
// the filter currency.
func (p SearchParams) PriceMatches(price model.Money) bool {
	if p.PriceMin == nil && p.PriceMax == nil {
		return true
	}
	if price.CurrencyCode != p.currency() {
		return false
	}
	v := price.Float()
	if p.PriceMin != nil && v < *p.PriceMin {
		return false
	}
	if p.PriceMax != nil && v > *p.PriceMax {
		return false
	}
	return true
}

// GiftQuery renders person details as a free-text query for semantic backends.
func GiftQuery(gender string, age int, preferences string) string {
	return fmt.Sprintf("gift for %d year old %s with preferences for %s", age, gender, preferences)
}

type Catalog interface {
	// Search returns matching product identifiers; never nil on success.
	Search(ctx context.Context, params SearchParams) ([]string, error)
	Lookup(ctx context.Context, id string) (*model.Product, error)
	// Name identifies the backend in health output and logs.
	Name() string
	Ready() bool
}
