package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/shoppingmate-ai/server/internal/agent/catalog"
)

type GetProductDetailsInput struct {
	ProductID string `json:"product_id"`
}

type GetProductDetailsOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Found       bool     `json:"found"`
}

func createGetProductDetailsTool(c catalog.Catalog) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetProductDetails,
			Desc: "Get the name, description, price and categories of one product. Use this when the customer asks about a specific product or wants to compare products.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {
					Type:     "string",
					Desc:     "Exact product ID from search_products results or the conversation.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *GetProductDetailsInput) (*GetProductDetailsOutput, error) {
			if in.ProductID == "" {
				return nil, fmt.Errorf("product_id is required")
			}
			p, err := c.Lookup(ctx, in.ProductID)
			if errors.Is(err, catalog.ErrProductNotFound) {
				// let the model recover instead of failing the run
				return &GetProductDetailsOutput{ID: in.ProductID, Found: false}, nil
			}
			if err != nil {
				return nil, fmt.Errorf("lookup product: %w", err)
			}
			return &GetProductDetailsOutput{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price.Float(),
				Currency:    p.Price.CurrencyCode,
				Categories:  p.Categories,
				Found:       true,
			}, nil
		},
	)
}
