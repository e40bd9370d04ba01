package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"feedboard/apperr"
	"feedboard/cmd/internal/logger"
)

// errorBody is the single error shape ever sent to clients by the
// terminal handler. Data is omitted when the error carries none.
type errorBody struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorHandler is the handler of last resort. It recovers panics,
// formats any error attached to the gin context into a structured JSON
// response and guarantees that no request is left unanswered. Domain
// errors (*apperr.Error) decide their own status code; everything else
// defaults to 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorWithFields("panic recovered", logger.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
					"panic":  fmt.Sprint(r),
				})
				_ = c.Error(fmt.Errorf("internal server error"))
			}
			writeError(c)
		}()

		c.Next()
	}
}

// writeError renders the last attached error, unless a handler already
// produced a response body.
func writeError(c *gin.Context) {
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err

	status := http.StatusInternalServerError
	body := errorBody{Message: err.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		status = ae.StatusCode()
		body.Message = ae.Message
		body.Data = ae.Data
	}

	logger.ErrorWithFields("request failed", logger.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"status": status,
		"error":  err.Error(),
	})

	c.JSON(status, body)
}
