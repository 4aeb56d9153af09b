package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/shoppingmate-ai/server/internal/agent/assistant"
	"github.com/shoppingmate-ai/server/internal/agent/model"
	"github.com/shoppingmate-ai/server/internal/agent/vision"
	"github.com/shoppingmate-ai/server/internal/core"
	httptransport "github.com/shoppingmate-ai/server/internal/http"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
	"github.com/shoppingmate-ai/server/pkg/postgres"
	pkgredis "github.com/shoppingmate-ai/server/pkg/redis"
)

// AppConfig defines every configurable parameter of the server, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment    string        `envconfig:"ENVIRONMENT" default:"development"`
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8070"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`

	// Infrastructure
	Redis   pkgredis.Config `envconfig:"REDIS"`
	AlloyDB postgres.Config `envconfig:"ALLOYDB"`
	Secrets model.SecretConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Assistant configs
	Action  model.ActionModelConfig
	OpenAI  model.OpenAIConfig
	Agent   model.AgentConfig
	Vision  model.VisionConfig
	Catalog model.CatalogConfig
}

func main() {
	envErr := godotenv.Load(".env")

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env, Service: "shoppingmate"})
	if envErr != nil {
		logx.Warn().Err(envErr).Msg("Could not load .env file; using process environment")
	}
	gin.SetMode(env.GinMode())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := wire(ctx, &cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise services")
	}
	defer deps.Close()

	var captioner vision.Captioner
	if deps.GenAI != nil {
		captioner = vision.NewGenAICaptioner(deps.GenAI.Models, cfg.Vision.Model)
	}

	svc, err := assistant.New(assistant.Config{
		Catalog:   deps.Catalog,
		Generator: deps.Generator,
		Captioner: captioner,
		Timeout:   cfg.RequestTimeout,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build assistant")
	}

	handler := httptransport.NewServer(httptransport.ServerDeps{Assistant: svc})
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logx.Error().Err(err).Msg("HTTP server shutdown")
		}
	}()

	health := svc.Health()
	logx.Info().
		Str("addr", cfg.HTTPAddr).
		Str("environment", env.String()).
		Str("mode", health.Mode).
		Str("catalog", health.CatalogBackend).
		Bool("catalog_ready", health.CatalogReady).
		Int("tools", health.Tools).
		Msg("ShoppingMate server listening")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Fatal().Err(err).Msg("HTTP server failed")
	}
	logx.Info().Msg("ShoppingMate server stopped")
}
