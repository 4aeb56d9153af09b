// Package llm holds the language-model backends that turn a rendered action
// prompt into raw reply text.
package llm

import (
	"context"
	"strings"
)

const (
	ModeDirect = "direct"
	ModeAgent  = "agent"
)

// Generator produces the raw reply for one action prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Mode is ModeDirect or ModeAgent. Agent replies may be plain text.
	Mode() string
	// ToolCount is the number of tools the model can call.
	ToolCount() int
}

// replyText trims a model reply. A blank reply is returned as "" so the
// normalizer can answer with its rephrase message.
func replyText(content string) string {
	return strings.TrimSpace(content)
}
