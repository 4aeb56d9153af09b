package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/shoppingmate-ai/server/internal/agent/catalog"
	"github.com/shoppingmate-ai/server/internal/agent/normalizer"
)

const (
	defaultMaxResults = 10
	maxMaxResults     = 20
)

// ===================================
// Search Product Tool
// ===================================

type SearchProductInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type ProductSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

type SearchProductOutput struct {
	Products []ProductSummary `json:"products"`
	Total    int              `json:"total"`
}

func createSearchProductTool(c catalog.Catalog) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchProduct,
			Desc: "Search the product catalog. Returns product IDs with name and price. A price clause such as 'under 50' or 'over 20 EUR' in the query filters by price. Use this tool whenever the customer mentions a product.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Product search keywords, e.g. 'mug', 'sunglasses under 30', 'kitchen over 5 USD'.",
					Required: true,
				},
				"max_results": {
					Type: "number",
					Desc: "Maximum number of products to return (default: 10, max: 20)",
				},
			}),
		},
		func(ctx context.Context, in *SearchProductInput) (*SearchProductOutput, error) {
			if in.Query == "" {
				return nil, fmt.Errorf("query is required")
			}
			limit := clampInt(in.MaxResults, 1, maxMaxResults)
			if in.MaxResults == 0 {
				limit = defaultMaxResults
			}

			pf := normalizer.ExtractPriceFilter(in.Query)
			ids, err := c.Search(ctx, catalog.SearchParams{
				Query:    pf.Remainder,
				Text:     in.Query,
				PriceMin: pf.Min,
				PriceMax: pf.Max,
				Currency: pf.Currency,
			})
			if err != nil {
				return nil, fmt.Errorf("search catalog: %w", err)
			}
			if len(ids) > limit {
				ids = ids[:limit]
			}

			out := &SearchProductOutput{Products: make([]ProductSummary, 0, len(ids))}
			for _, id := range ids {
				summary := ProductSummary{ID: id}
				if p, err := c.Lookup(ctx, id); err == nil {
					summary.Name = p.Name
					summary.Price = p.Price.Float()
					summary.Currency = p.Price.CurrencyCode
				}
				out.Products = append(out.Products, summary)
			}
			out.Total = len(out.Products)
			return out, nil
		},
	)
}

// clampInt returns v limited to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
