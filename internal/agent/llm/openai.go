package llm

import (
	"context"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	errx "github.com/shoppingmate-ai/server/internal/core/error"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// OpenAIGenerator talks to any OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIGenerator(cfg *model.OpenAIConfig, action *model.ActionModelConfig) *OpenAIGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIGenerator{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   action.MaxTokens,
		temperature: action.Temperature,
	}
}

func (g *OpenAIGenerator) Mode() string   { return ModeDirect }
func (g *OpenAIGenerator) ToolCount() int { return 0 }

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       shared.ChatModel(g.model),
		Temperature: openai.Float(float64(g.temperature)),
	}
	if g.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(g.maxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errx.WrapModel(err)
	}
	if len(resp.Choices) == 0 {
		return "", errx.WrapModel(errx.ErrEmptyModelResponse)
	}

	_, _, total := model.TokenCost(int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens), model.ResolvePricing(g.model))
	logx.Debug().
		Str("component", "llm").
		Str("model", g.model).
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Float64("total_cost_usd", total).
		Dur("latency", time.Since(start)).
		Msg("action model replied")

	return replyText(resp.Choices[0].Message.Content), nil
}
