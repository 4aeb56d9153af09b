package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shoppingmate-ai/server/internal/agent/model"
)

func ptr[T any](v T) *T { return &v }

func TestMemorySearch(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		params SearchParams
		want   []string
	}{
		{"name match", SearchParams{Query: "watch"}, []string{"1YMWWN1N4O"}},
		{"case insensitive description", SearchParams{Query: "KITCHEN"}, []string{"LS4PSXUNUM", "9SIQT8TOJO"}},
		{"id match", SearchParams{Query: "6e92"}, []string{"6E92ZMYYFZ"}},
		{"watch under 100 excluded", SearchParams{Query: "watch", PriceMax: ptr(100.0)}, []string{}},
		{"watch over 100", SearchParams{Query: "watch", PriceMin: ptr(100.0)}, []string{"1YMWWN1N4O"}},
		{"currency mismatch", SearchParams{Query: "watch", PriceMin: ptr(1.0), Currency: "EUR"}, []string{}},
		{"currency ignored without bounds", SearchParams{Query: "watch", Currency: "EUR"}, []string{"1YMWWN1N4O"}},
		{"cheap items", SearchParams{PriceMax: ptr(9.0)}, []string{"9SIQT8TOJO", "6E92ZMYYFZ"}},
		{"price band", SearchParams{PriceMin: ptr(18.0), PriceMax: ptr(19.0)}, []string{"66VCHSJNUP", "0PUK6V6EV0", "LS4PSXUNUM"}},
		{"bound is inclusive", SearchParams{PriceMin: ptr(5.0), PriceMax: ptr(5.49)}, []string{"9SIQT8TOJO"}},
		{"no match", SearchParams{Query: "laptop"}, []string{}},
		{"gift preferences", SearchParams{Preferences: "travel", Age: ptr(30), Gender: "perfect"}, []string{"2ZYFJ3GM2N"}},
		{"gift gender absent from catalog", SearchParams{Gender: "female", Age: ptr(30), Preferences: "kitchen"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Search(ctx, tt.params)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemoryAgeRule(t *testing.T) {
	m := NewMemory([]model.Product{
		{ID: "A", Name: "Puzzle", Description: "fun for kids", Price: usd(5, 0)},
		{ID: "B", Name: "Whisky glass", Description: "for adults only", Price: usd(5, 0)},
		{ID: "C", Name: "Book", Description: "for everyone", Price: usd(5, 0)},
	})
	ctx := context.Background()

	child, _ := m.Search(ctx, SearchParams{Age: ptr(10)})
	if !reflect.DeepEqual(child, []string{"A", "C"}) {
		t.Fatalf("child results = %v", child)
	}
	adult, _ := m.Search(ctx, SearchParams{Age: ptr(18)})
	if !reflect.DeepEqual(adult, []string{"B", "C"}) {
		t.Fatalf("adult results = %v", adult)
	}
}

func TestMemoryLookup(t *testing.T) {
	m := NewMemory(nil)
	p, err := m.Lookup(context.Background(), "L9ECAV7KIM")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Name != "Loafers" || p.Price.Units != 89 {
		t.Fatalf("unexpected product %+v", p)
	}
	if _, err := m.Lookup(context.Background(), "NOPE"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestMemorySearchHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemory(nil).Search(ctx, SearchParams{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGiftQuery(t *testing.T) {
	got := GiftQuery("female", 30, "hiking")
	want := "gift for 30 year old female with preferences for hiking"
	if got != want {
		t.Fatalf("got %q", got)
	}
}

func TestVectorLiteral(t *testing.T) {
	if got := vectorLiteral([]float32{0.5, -1, 2.25}); got != "[0.5,-1,2.25]" {
		t.Fatalf("got %s", got)
	}
	if got := vectorLiteral(nil); got != "[]" {
		t.Fatalf("got %s", got)
	}
}
