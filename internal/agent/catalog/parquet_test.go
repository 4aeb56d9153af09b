package catalog

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.parquet")
	rows := []productRow{
		{ID: "A1", Name: "Lamp", Description: "warm light", Categories: "decor, home", Units: 20, Nanos: 500000000, Currency: "usd"},
		{ID: "", Name: "No id", Units: 1, Currency: "USD"},
		{ID: "B2", Name: "Bad currency", Units: 1, Currency: "XXY"},
		{ID: "C3", Name: "Bad nanos", Units: 1, Nanos: -1, Currency: "USD"},
		{ID: "A1", Name: "Duplicate", Units: 1, Currency: "USD"},
		{ID: "D4", Name: "Rug", Description: "soft", Categories: "{home,floor}", Units: 99, Currency: "EUR"},
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	products, err := LoadParquet(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2: %+v", len(products), products)
	}
	if products[0].ID != "A1" || products[0].Price.CurrencyCode != "USD" || products[0].Price.Float() != 20.5 {
		t.Fatalf("unexpected first product %+v", products[0])
	}
	if !reflect.DeepEqual(products[0].Categories, []string{"decor", "home"}) {
		t.Fatalf("categories = %v", products[0].Categories)
	}
	if !reflect.DeepEqual(products[1].Categories, []string{"home", "floor"}) {
		t.Fatalf("categories = %v", products[1].Categories)
	}
}

func TestLoadParquetMissingFile(t *testing.T) {
	if _, err := LoadParquet(filepath.Join(t.TempDir(), "missing.parquet")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
