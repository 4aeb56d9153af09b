// Package http exposes the assistant over gin.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	"github.com/shoppingmate-ai/server/internal/http/middleware"
)

// Assistant is what the handlers need from the request pipeline.
type Assistant interface {
	ProcessQuery(ctx context.Context, req model.QueryRequest) model.QueryResponse
	Health() model.HealthStatus
}

type ServerDeps struct {
	Assistant Assistant
}

type Server struct {
	assistant Assistant
}

func NewServer(deps ServerDeps) *Server {
	return &Server{assistant: deps.Assistant}
}

// Routes builds the gin engine. Call gin.SetMode before this.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	h := NewQueryHandler(s.assistant)
	r.POST("/process_query", h.ProcessQuery)
	r.GET("/health", h.Health)
	return r
}
