package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

const msgPanic = "An internal error occurred. Please try again later."

// Recovery turns a handler panic into a well-formed actions body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logx.Error().
					Str("component", "http").
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")
				c.AbortWithStatusJSON(http.StatusOK, model.QueryResponse{
					Actions: []model.Action{model.NewResponse(msgPanic)},
				})
			}
		}()
		c.Next()
	}
}
