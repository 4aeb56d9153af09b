package llm

import (
	"context"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	errx "github.com/shoppingmate-ai/server/internal/core/error"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// GeminiGenerator sends the prompt as a single user turn, without tools.
type GeminiGenerator struct {
	chat      einomodel.BaseChatModel
	modelName string
}

func NewGeminiGenerator(chat einomodel.BaseChatModel, modelName string) *GeminiGenerator {
	return &GeminiGenerator{chat: chat, modelName: modelName}
}

func (g *GeminiGenerator) Mode() string   { return ModeDirect }
func (g *GeminiGenerator) ToolCount() int { return 0 }

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := g.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", errx.WrapModel(err)
	}
	if out == nil {
		return "", errx.WrapModel(errx.ErrEmptyModelResponse)
	}

	ev := logx.Debug().
		Str("component", "llm").
		Str("model", g.modelName).
		Dur("latency", time.Since(start))
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		_, _, total := model.ComputeCost(out.ResponseMeta.Usage, model.ResolvePricing(g.modelName))
		ev = ev.Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).Float64("total_cost_usd", total)
	}
	ev.Msg("action model replied")

	return replyText(out.Content), nil
}
