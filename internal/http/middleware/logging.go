package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// Logging writes one access log line per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := logx.Info()
		if c.Writer.Status() >= 500 {
			ev = logx.Error()
		}
		ev.Str("component", "http").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
