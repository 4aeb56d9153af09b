package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/shoppingmate-ai/server/internal/agent/catalog"
	"github.com/shoppingmate-ai/server/internal/agent/graph/nodes"
	"github.com/shoppingmate-ai/server/internal/agent/graph/observers"
	"github.com/shoppingmate-ai/server/internal/agent/graph/tools"
	"github.com/shoppingmate-ai/server/internal/agent/model"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// Runner executes the compiled tool-calling graph for one rendered prompt.
type Runner interface {
	Invoke(ctx context.Context, prompt string) (*schema.Message, error)
	// ToolCount is the number of tools bound to the model.
	ToolCount() int
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	// ChatModel must support tool binding; *gemini.ChatModel does.
	ChatModel    einomodel.ChatModel
	ModelName    string
	Catalog      catalog.Catalog
	ToolMaxCalls int
}

// GraphBuilder handles the construction of the agent graph.
type GraphBuilder struct {
	config    *GraphConfig
	graph     *compose.Graph[string, *schema.Message]
	toolCount int
}

type graphRunner struct {
	runnable  compose.Runnable[string, *schema.Message]
	toolCount int
}

func (r *graphRunner) Invoke(ctx context.Context, prompt string) (*schema.Message, error) {
	out, err := r.runnable.Invoke(ctx, prompt, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	if out != nil && len(out.Extra) > 0 {
		if b, err := json.Marshal(out.Extra); err == nil {
			logx.Debug().RawJSON("extra", b).Msg("agent run finished")
		}
	}
	return out, nil
}

func (r *graphRunner) ToolCount() int { return r.toolCount }

// BuildAgentGraph builds the graph and returns a Runner.
//
//	START -> input_converter -> action_chat_model -+-> END
//	                                ^               |
//	                                +- tool_executor <+
func BuildAgentGraph(ctx context.Context, config *GraphConfig) (Runner, error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModel == nil {
		return nil, fmt.Errorf("chat model is not initialized")
	}
	if config.Catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[string, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AgentState {
				return &model.AgentState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}
	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}
	logx.Debug().Int("tools", builder.toolCount).Msg("Agent graph built successfully")
	return &graphRunner{runnable: runnable, toolCount: builder.toolCount}, nil
}

// setupTools binds the catalog tools to the model and adds the tools node.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	businessTools := tools.GetQueryTools(b.config.Catalog)
	toolInfos, err := tools.GetToolInfos(ctx, businessTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.ChatModel.BindTools(toolInfos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to action model")
		return fmt.Errorf("failed to bind tools to action model: %w", err)
	}
	b.toolCount = len(toolInfos)

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               businessTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: sanitizeToolArguments,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	return b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	)
}

// sanitizeToolArguments trims and coerces model-written arguments. It never
// fails: anything it cannot read is passed through unchanged.
func sanitizeToolArguments(ctx context.Context, name, arguments string) (string, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		return arguments, nil
	}

	switch name {
	case tools.ToolSearchProduct:
		if v, ok := m["query"]; ok {
			m["query"] = strings.TrimSpace(stringArg(v))
		}
		if v, ok := m["max_results"]; ok {
			switch vv := v.(type) {
			case float64:
				m["max_results"] = int(vv)
			case string:
				var n float64
				if _, err := fmt.Sscan(strings.TrimSpace(vv), &n); err == nil {
					m["max_results"] = int(n)
				} else {
					delete(m, "max_results")
				}
			default:
				delete(m, "max_results")
			}
		}
	case tools.ToolGetProductDetails:
		if v, ok := m["product_id"]; ok {
			m["product_id"] = strings.TrimSpace(stringArg(v))
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return arguments, nil
	}
	return string(out), nil
}

func stringArg(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (b *GraphBuilder) addNodes() error {
	if err := b.graph.AddLambdaNode(nodes.NodeInputConverter,
		nodes.NewInputConverterNode(),
		compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
	); err != nil {
		return fmt.Errorf("add input converter: %w", err)
	}

	if err := b.graph.AddChatModelNode(nodes.NodeActionChatModel,
		b.config.ChatModel,
		compose.WithStatePreHandler(nodes.NewActionChatModelPreHandler(b.config.ToolMaxCalls)),
		compose.WithStatePostHandler(nodes.NewActionChatModelPostHandler(b.config.ModelName)),
	); err != nil {
		return fmt.Errorf("add action model: %w", err)
	}
	return nil
}

func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeActionChatModel},
		{nodes.NodeToolExecutor, nodes.NodeActionChatModel},
	}
	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

func (b *GraphBuilder) addBranches() error {
	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeActionChatModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}
	return nil
}

func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[string, *schema.Message], error) {
	// Limit total run steps to avoid infinite tool loops
	maxSteps := 4 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}
	return runnable, nil
}
