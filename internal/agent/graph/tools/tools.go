package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/shoppingmate-ai/server/internal/agent/catalog"
)

const (
	ToolSearchProduct     = "search_products"
	ToolGetProductDetails = "get_product_details"
)

// GetQueryTools returns the catalog-backed tools offered to the agent model.
func GetQueryTools(c catalog.Catalog) []tool.BaseTool {
	return []tool.BaseTool{
		createSearchProductTool(c),
		createGetProductDetailsTool(c),
	}
}

// GetToolInfos collects the schema of every tool for binding to a chat model.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
