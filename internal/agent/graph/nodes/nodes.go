package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// NewInputConverterPreHandler resets per-run counters before the first model call.
func NewInputConverterPreHandler() func(context.Context, string, *model.AgentState) (string, error) {
	return func(ctx context.Context, in string, s *model.AgentState) (string, error) {
		s.History = nil
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputConverterNode wraps the rendered action prompt as the opening user turn.
func NewInputConverterNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, prompt string) ([]*schema.Message, error) {
		if strings.TrimSpace(prompt) == "" {
			return nil, fmt.Errorf("empty prompt")
		}
		return []*schema.Message{schema.UserMessage(prompt)}, nil
	})
}

// NewActionChatModelPreHandler feeds the whole run history to the model and,
// once the tool budget is spent, appends a notice telling it to answer.
func NewActionChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AgentState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AgentState) ([]*schema.Message, error) {
		// tool results must carry the id of the call they answer
		for _, m := range in {
			if m == nil || m.Role != schema.Tool || strings.TrimSpace(m.ToolCallID) != "" {
				continue
			}
			if id := lastToolCallID(state.History, m.ToolName); id != "" {
				m.ToolCallID = id
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			state.History = append(state.History, &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Do not call any more tools. Answer now with the JSON array of actions, "+
						"using only product IDs you have already seen.",
					maxToolCalls,
				),
			})
		}
		return state.History, nil
	}
}

func lastToolCallID(history []*schema.Message, toolName string) string {
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
			continue
		}
		for _, tc := range msg.ToolCalls {
			if toolName == "" || tc.Function.Name == toolName {
				return tc.ID
			}
		}
		return msg.ToolCalls[0].ID
	}
	return ""
}

// NewActionChatModelPostHandler records usage cost and assigns ids to tool
// calls the provider left unnamed.
func NewActionChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AgentState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AgentState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("action model returned no message")
		}
		if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			usage := out.ResponseMeta.Usage
			inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(modelName))
			state.TotalCostUSD += totalC
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
			logx.Debug().
				Str("node", NodeActionChatModel).
				Str("model", modelName).
				Int("prompt_tokens", usage.PromptTokens).
				Int("completion_tokens", usage.CompletionTokens).
				Int("total_tokens", usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", state.TotalCostUSD).
				Msg("LLM usage")
		}

		for i := range out.ToolCalls {
			if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
				state.ToolCallIDSeq++
				out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
			}
		}

		state.History = append(state.History, out)
		return out, nil
	}
}

// NewToolExecutorCondition routes to the tool executor while the model asks
// for tools and the budget allows it.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		_ = compose.ProcessState(ctx, func(_ context.Context, state *model.AgentState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})

		if limitReached {
			logx.Debug().Msg("Tool limit reached previously - routing to end")
			return compose.END, nil
		}
		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}
		return compose.END, nil
	}
}

// NewToolExecutorPreHandler counts tool rounds against the budget.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AgentState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AgentState) (*schema.Message, error) {
		if incrementToolCallAndCheck(state, maxToolCalls) {
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", normalizeMaxToolCalls(maxToolCalls)).
				Msg("Tool call limit exceeded - flagging and continuing")
		}
		return in, nil
	}
}
