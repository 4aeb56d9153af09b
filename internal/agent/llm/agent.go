package llm

import (
	"context"
	"time"

	"github.com/shoppingmate-ai/server/internal/agent/graph"
	errx "github.com/shoppingmate-ai/server/internal/core/error"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// AgentGenerator lets the model call the catalog tools before it answers.
type AgentGenerator struct {
	runner graph.Runner
}

func NewAgentGenerator(runner graph.Runner) *AgentGenerator {
	return &AgentGenerator{runner: runner}
}

func (g *AgentGenerator) Mode() string   { return ModeAgent }
func (g *AgentGenerator) ToolCount() int { return g.runner.ToolCount() }

func (g *AgentGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := g.runner.Invoke(ctx, prompt)
	if err != nil {
		return "", errx.WrapModel(err)
	}
	if out == nil {
		return "", errx.WrapModel(errx.ErrEmptyModelResponse)
	}
	logx.Debug().
		Str("component", "llm").
		Str("mode", ModeAgent).
		Int("pending_tool_calls", len(out.ToolCalls)).
		Dur("latency", time.Since(start)).
		Msg("agent run completed")
	return replyText(out.Content), nil
}
