package model

import (
	"github.com/cloudwego/eino/schema"
)

// Pricing defines USD cost per 1M tokens for input/output.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// defaultPricing provides hardcoded USD pricing per 1M tokens (text tokens).
var defaultPricing = map[string]Pricing{
	// Source: Gemini pricing (Standard; text). Adjust for audio/image if needed.
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
	"gemini-2.5-pro":        {InputPerM: 1.25, OutputPerM: 10.00},
	"gemini-2.0-flash":      {InputPerM: 0.10, OutputPerM: 0.40},
	// OpenAI-compatible provider
	"gpt-4o-mini": {InputPerM: 0.15, OutputPerM: 0.60},
	"gpt-4o":      {InputPerM: 2.50, OutputPerM: 10.00},
}

// ResolvePricing returns hardcoded pricing for a model; unknown models cost zero.
func ResolvePricing(model string) Pricing {
	return defaultPricing[model]
}

// ComputeCost converts token usage to USD cost using per-1M Pricing.
func ComputeCost(usage *schema.TokenUsage, p Pricing) (inputCost, outputCost, total float64) {
	if usage == nil {
		return 0, 0, 0
	}
	return TokenCost(usage.PromptTokens, usage.CompletionTokens, p)
}

// TokenCost prices raw token counts for providers that do not report
// schema.TokenUsage (the OpenAI-compatible client).
func TokenCost(promptTokens, completionTokens int, p Pricing) (inputCost, outputCost, total float64) {
	inputCost = p.InputPerM * float64(promptTokens) / 1_000_000.0
	outputCost = p.OutputPerM * float64(completionTokens) / 1_000_000.0
	total = inputCost + outputCost
	return
}
