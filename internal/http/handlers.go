package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

const msgBadRequest = "I could not read that request. Please send a JSON body with a message."

type QueryHandler struct {
	assistant Assistant
}

func NewQueryHandler(a Assistant) *QueryHandler {
	return &QueryHandler{assistant: a}
}

// ProcessQuery handles POST /process_query. Every outcome, including
// internal failures, is a 200 with an actions body; only an unreadable body
// is a 400.
func (h *QueryHandler) ProcessQuery(c *gin.Context) {
	var req model.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logx.Warn().Str("component", "http").Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, model.QueryResponse{
			Actions: []model.Action{model.NewResponse(msgBadRequest)},
		})
		return
	}

	logx.Info().
		Str("component", "http").
		Str("message", req.Message).
		Int("history_turns", len(req.ConversationHistory)).
		Bool("image", req.Image != "").
		Msg("query received")

	resp := h.assistant.ProcessQuery(c.Request.Context(), req)
	if resp.Actions == nil {
		resp.Actions = []model.Action{}
	}
	c.JSON(http.StatusOK, resp)
}

// Health handles GET /health.
func (h *QueryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.assistant.Health())
}
