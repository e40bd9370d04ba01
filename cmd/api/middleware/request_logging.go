package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"feedboard/cmd/internal/logger"
)

const headerRequestID = "X-Request-Id"

// RequestLogging ensures every inbound request carries a request id and
// logs method/path/status/duration once the response is written.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		requestID := req.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		c.Request.Header.Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerRequestID, requestID)

		c.Next()

		logger.InfoWithFields("completed request", logger.Fields{
			"method":      req.Method,
			"path":        req.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  requestID,
		})
	}
}
