package prompts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/shoppingmate-ai/server/internal/agent/graph/observers"
)

//go:embed template/action_prompt.txt
var actionPrompt string

//go:embed template/tool_instructions.txt
var toolInstructions string

// ActionPromptInput is everything the action prompt mentions about a request.
type ActionPromptInput struct {
	Message             string
	ConversationHistory []any
	UserContext         map[string]any
	RoomDescription     string
	// Tools names the search and details tools available in agent mode;
	// empty for a direct model call.
	Tools *ToolNames
}

type ToolNames struct {
	Search  string
	Details string
}

// RenderActionPrompt renders the action prompt via the Eino prompt component,
// which triggers Prompt callbacks, and returns the final prompt string.
func RenderActionPrompt(ctx context.Context, in ActionPromptInput) (string, error) {
	history, err := marshalOr(in.ConversationHistory, "[]")
	if err != nil {
		return "", fmt.Errorf("conversation history: %w", err)
	}
	userCtx, err := marshalOr(in.UserContext, "{}")
	if err != nil {
		return "", fmt.Errorf("user context: %w", err)
	}

	tools := ""
	if in.Tools != nil {
		tools = strings.NewReplacer(
			"{search_tool}", in.Tools.Search,
			"{details_tool}", in.Tools.Details,
		).Replace(toolInstructions)
	}

	// Substitute known tokens only; the template is full of JSON braces.
	content := strings.NewReplacer(
		"{tool_instructions}", tools,
		"{user_message}", in.Message,
		"{conversation_history}", history,
		"{user_context}", userCtx,
		"{room_description}", in.RoomDescription,
	).Replace(actionPrompt)

	return render(ctx, "action_prompt", content)
}

// render passes content through a messages placeholder so prompt callbacks fire.
func render(ctx context.Context, name, content string) (string, error) {
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      name,
		Component: components.ComponentOfPrompt,
	}, observers.NewAllCallbacks())

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("prompt_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"prompt_messages": []*schema.Message{schema.UserMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}

// marshalOr serialises v as JSON, using fallback for nil values.
func marshalOr[T any](v T, fallback string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return fallback, nil
	}
	return string(b), nil
}
