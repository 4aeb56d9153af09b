package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shoppingmate-ai/server/internal/agent/model"
)

// Memory scans a fixed product table.
type Memory struct {
	products []model.Product
	byID     map[string]int
}

// NewMemory copies products into a new table. A nil slice selects DefaultProducts.
func NewMemory(products []model.Product) *Memory {
	if products == nil {
		products = DefaultProducts()
	}
	m := &Memory{
		products: append([]model.Product(nil), products...),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range m.products {
		m.byID[p.ID] = i
	}
	return m
}

func (m *Memory) Name() string { return "memory" }
func (m *Memory) Ready() bool  { return true }

// Search keeps a product only when it passes the text, price and gift
// filters; each filter passes when its inputs are absent.
func (m *Memory) Search(ctx context.Context, params SearchParams) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := strings.ToLower(params.Query)
	gender := strings.ToLower(params.Gender)
	prefs := strings.ToLower(params.Preferences)

	ids := []string{}
	for i := range m.products {
		p := &m.products[i]
		if query != "" && !p.Contains(query) {
			continue
		}
		if !params.PriceMatches(p.Price) {
			continue
		}
		if !giftMatches(p, gender, params.Age, prefs) {
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func giftMatches(p *model.Product, gender string, age *int, prefs string) bool {
	name := strings.ToLower(p.Name)
	desc := strings.ToLower(p.Description)
	if gender != "" && !strings.Contains(name, gender) && !strings.Contains(desc, gender) {
		return false
	}
	if age != nil && *age != 0 {
		if *age < 18 && strings.Contains(desc, "adult") {
			return false
		}
		if *age >= 18 && strings.Contains(desc, "kid") {
			return false
		}
	}
	if prefs != "" && !strings.Contains(name, prefs) && !strings.Contains(desc, prefs) {
		return false
	}
	return true
}

func (m *Memory) Lookup(ctx context.Context, id string) (*model.Product, error) {
	i, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	p := m.products[i]
	return &p, nil
}

func usd(units int64, nanos int32) model.Money {
	return model.Money{Units: units, Nanos: nanos, CurrencyCode: "USD"}
}

// DefaultProducts is the built-in nine-item table served when no other
// source is configured.
func DefaultProducts() []model.Product {
	return []model.Product{
		{ID: "OLJCESPC7Z", Name: "Sunglasses", Price: usd(19, 990000000), Categories: []string{"accessories"},
			Description: "Add a modern touch to your outfits with these sleek aviator sunglasses."},
		{ID: "66VCHSJNUP", Name: "Tank Top", Price: usd(18, 990000000), Categories: []string{"clothing", "tops"},
			Description: "Perfectly cropped cotton tank, with a scooped neckline."},
		{ID: "1YMWWN1N4O", Name: "Watch", Price: usd(109, 990000000), Categories: []string{"accessories"},
			Description: "This gold-tone stainless steel watch will work with most of your outfits."},
		{ID: "L9ECAV7KIM", Name: "Loafers", Price: usd(89, 990000000), Categories: []string{"footwear"},
			Description: "A neat addition to your summer wardrobe."},
		{ID: "2ZYFJ3GM2N", Name: "Hairdryer", Price: usd(24, 990000000), Categories: []string{"hair", "beauty"},
			Description: "This lightweight hairdryer has 3 heat and speed settings. It's perfect for travel."},
		{ID: "0PUK6V6EV0", Name: "Candle Holder", Price: usd(18, 990000000), Categories: []string{"decor", "home"},
			Description: "This small but intricate candle holder is an excellent gift."},
		{ID: "LS4PSXUNUM", Name: "Salt & Pepper Shakers", Price: usd(18, 490000000), Categories: []string{"kitchen"},
			Description: "Add some flavor to your kitchen."},
		{ID: "9SIQT8TOJO", Name: "Bamboo Glass Jar", Price: usd(5, 490000000), Categories: []string{"kitchen"},
			Description: "This bamboo glass jar can hold 57 oz (1.7 l) and is perfect for any kitchen."},
		{ID: "6E92ZMYYFZ", Name: "Mug", Price: usd(8, 990000000), Categories: []string{"kitchen"},
			Description: "A simple mug with a mustard interior."},
	}
}
