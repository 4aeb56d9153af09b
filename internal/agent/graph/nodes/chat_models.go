package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// NewGenAIClient creates the Gemini API client shared by the chat, vision
// and embedding components.
func NewGenAIClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewActionChatModel creates the chat model that writes the action array.
func NewActionChatModel(ctx context.Context, client *genai.Client, cfg *model.ActionModelConfig) (*gemini.ChatModel, error) {
	if client == nil || cfg == nil {
		return nil, fmt.Errorf("gemini client and action model config are required")
	}
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(1024)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Str("model", cfg.Model).Msg("Error creating action model")
		return nil, fmt.Errorf("error creating action model: %w", err)
	}
	return cm, nil
}
