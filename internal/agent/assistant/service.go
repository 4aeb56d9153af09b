// Package assistant runs one shopping query end to end: optional room
// captioning, prompt rendering, model call and action normalisation.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shoppingmate-ai/server/internal/agent/catalog"
	"github.com/shoppingmate-ai/server/internal/agent/graph/prompts"
	"github.com/shoppingmate-ai/server/internal/agent/graph/tools"
	"github.com/shoppingmate-ai/server/internal/agent/llm"
	"github.com/shoppingmate-ai/server/internal/agent/model"
	"github.com/shoppingmate-ai/server/internal/agent/normalizer"
	"github.com/shoppingmate-ai/server/internal/agent/vision"
	errx "github.com/shoppingmate-ai/server/internal/core/error"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

const (
	MsgInternalError       = "An internal error occurred. Please try again later."
	MsgCatalogUnavailable  = "The product database is not available right now. Please try again later."
	MsgImageFailed         = "I had trouble processing the image. Please try again or describe the room."
	roomDescriptionMessage = "I see a room with a %s style."

	DefaultRequestTimeout = 60 * time.Second
)

type Config struct {
	Catalog   catalog.Catalog
	Generator llm.Generator
	// Captioner may be nil; images are then answered with MsgImageFailed.
	Captioner vision.Captioner
	Timeout   time.Duration
}

type Service struct {
	catalog    catalog.Catalog
	generator  llm.Generator
	captioner  vision.Captioner
	normalizer *normalizer.Normalizer
	timeout    time.Duration
}

func New(cfg Config) (*Service, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Service{
		catalog:    cfg.Catalog,
		generator:  cfg.Generator,
		captioner:  cfg.Captioner,
		normalizer: normalizer.New(cfg.Catalog),
		timeout:    timeout,
	}, nil
}

// ProcessQuery always returns a well-formed response. Collaborator failures
// are reported in-band as response actions.
func (s *Service) ProcessQuery(ctx context.Context, req model.QueryRequest) model.QueryResponse {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	actions := make([]model.Action, 0, 4)

	roomDescription := ""
	if req.Image != "" {
		caption, err := s.caption(ctx, req.Image)
		if err != nil {
			logx.Error().Str("component", "assistant").Err(err).Msg("image captioning failed; continuing without room description")
			actions = append(actions, model.NewResponse(MsgImageFailed))
		} else {
			roomDescription = caption
			actions = append(actions, model.NewResponse(fmt.Sprintf(roomDescriptionMessage, caption)))
		}
	}

	in := prompts.ActionPromptInput{
		Message:             req.Message,
		ConversationHistory: req.ConversationHistory,
		UserContext:         req.UserContext,
		RoomDescription:     roomDescription,
	}
	if s.generator.Mode() == llm.ModeAgent {
		in.Tools = &prompts.ToolNames{Search: tools.ToolSearchProduct, Details: tools.ToolGetProductDetails}
	}
	prompt, err := prompts.RenderActionPrompt(ctx, in)
	if err != nil {
		logx.Error().Str("component", "assistant").Err(err).Msg("render action prompt")
		return respond(append(actions, model.NewResponse(MsgInternalError)))
	}

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logx.Error().
			Str("component", "assistant").
			Str("mode", s.generator.Mode()).
			Int("status", errx.StatusOf(err)).
			Err(err).
			Msg("action model call failed")
		return respond(append(actions, model.NewResponse(MsgInternalError)))
	}
	logx.Debug().Str("component", "assistant").Str("raw", raw).Msg("raw model reply")

	normalized, err := s.normalizer.Normalize(ctx, normalizer.Input{
		Raw:             raw,
		Query:           req.Message,
		RoomDescription: roomDescription,
		UserContext:     req.UserContext,
		AllowPlainText:  s.generator.Mode() == llm.ModeAgent,
	})
	actions = append(actions, normalized...)
	if err != nil {
		msg := MsgInternalError
		if errors.Is(err, errx.ErrCatalogUnavailable) {
			msg = MsgCatalogUnavailable
		}
		actions = append(actions, model.NewResponse(msg))
	}

	logx.Info().
		Str("component", "assistant").
		Int("actions", len(actions)).
		Bool("image", req.Image != "").
		Dur("latency", time.Since(start)).
		Msg("query processed")
	return respond(actions)
}

func (s *Service) caption(ctx context.Context, image string) (string, error) {
	if s.captioner == nil {
		return "", fmt.Errorf("no vision model configured")
	}
	return s.captioner.Caption(ctx, image)
}

// Health reports readiness without touching any collaborator.
func (s *Service) Health() model.HealthStatus {
	status := "ok"
	if !s.catalog.Ready() {
		status = "degraded"
	}
	return model.HealthStatus{
		Status:         status,
		CatalogBackend: s.catalog.Name(),
		CatalogReady:   s.catalog.Ready(),
		Tools:          s.generator.ToolCount(),
		Mode:           s.generator.Mode(),
	}
}

func respond(actions []model.Action) model.QueryResponse {
	return model.QueryResponse{Actions: actions}
}
