package model

import (
	"github.com/cloudwego/eino/schema"
)

// AgentState stores per-invocation state for the tool-calling graph.
// Concurrency model:
//   - Registered as graph local state via compose.WithGenLocalState.
//   - Read and written only inside eino state handlers (WithStatePreHandler,
//     WithStatePostHandler, compose.ProcessState), which serialise access.
//   - Never touched outside handlers, so it carries no mutex.
type AgentState struct {
	History              []*schema.Message // prompt plus every model/tool turn of this run
	ToolCallCount        int
	ToolCallLimitReached bool
	ToolCallIDSeq        int // synthesises tool_call_id when the provider omits one

	// Accumulated LLM cost (USD) across model invocations for this request
	TotalCostUSD float64
}
