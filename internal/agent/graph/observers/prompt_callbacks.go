package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/prompt"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// newPromptHandler builds a typed PromptCallbackHandler (not yet wrapped).
func newPromptHandler() *callbackHelper.PromptCallbackHandler {
	return &callbackHelper.PromptCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *prompt.CallbackInput) context.Context {
			vars := 0
			if input != nil {
				vars = len(input.Variables)
			}
			logx.Debug().
				Str("component", "prompt").
				Str("name", info.Name).
				Int("variables", vars).
				Msg("prompt render start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *prompt.CallbackOutput) context.Context {
			if output != nil && len(output.Result) > 0 && output.Result[0] != nil {
				logx.Debug().
					Str("component", "prompt").
					Str("name", info.Name).
					Int("length", len(output.Result[0].Content)).
					Str("rendered", truncate(output.Result[0].Content, 2000)).
					Msg("prompt rendered")
			}
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Str("component", "prompt").Str("name", info.Name).Err(err).Msg("prompt render failed")
			return ctx
		},
	}
}
