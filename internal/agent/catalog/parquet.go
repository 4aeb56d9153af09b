package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/parquet-go/parquet-go"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// productRow mirrors the product table columns of the vector store, so the
// same export can seed either backend.
type productRow struct {
	ID          string `parquet:"id"`
	Name        string `parquet:"name"`
	Description string `parquet:"description"`
	Picture     string `parquet:"picture,optional"`
	Categories  string `parquet:"categories,optional"`
	Units       int64  `parquet:"price_usd_units"`
	Nanos       int32  `parquet:"price_usd_nanos"`
	Currency    string `parquet:"price_usd_currency_code"`
}

func (r productRow) toProduct() model.Product {
	return model.Product{
		ID:          strings.TrimSpace(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Picture:     r.Picture,
		Price: model.Money{
			Units:        r.Units,
			Nanos:        r.Nanos,
			CurrencyCode: strings.ToUpper(strings.TrimSpace(r.Currency)),
		},
		Categories: splitCategories(r.Categories),
	}
}

var validate = validator.New()

// LoadParquet reads a product table from a parquet file. Rows failing
// validation (missing id or name, bad currency code, nanos out of range) or
// repeating an earlier id are skipped with a warning.
func LoadParquet(path string) ([]model.Product, error) {
	rows, err := parquet.ReadFile[productRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}

	products := make([]model.Product, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		p := r.toProduct()
		if err := validate.Struct(p); err != nil {
			logx.Warn().
				Str("component", "catalog").
				Int("row", i).
				Err(err).
				Msg("skipping invalid product row")
			continue
		}
		if seen[p.ID] {
			logx.Warn().
				Str("component", "catalog").
				Str("product_id", p.ID).
				Msg("skipping duplicate product id")
			continue
		}
		seen[p.ID] = true
		products = append(products, p)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("parquet %s: no valid product rows", path)
	}
	return products, nil
}

// splitCategories accepts "a, b" as well as a postgres array literal "{a,b}".
func splitCategories(s string) []string {
	s = strings.Trim(strings.TrimSpace(s), "{}")
	if s == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.Trim(strings.TrimSpace(c), `"`); c != "" {
			out = append(out, c)
		}
	}
	return out
}
