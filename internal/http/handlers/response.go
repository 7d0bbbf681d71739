// Package handlers provides the Gin handlers of the rabbitry REST API and the
// bot webhook.
//
// Handlers are transport-thin: they parse and validate input, call the
// services, and write either a JSON body or an ErrorResponse via fail().
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "cage_empty",
//	  "message": "cage is empty"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rabbitry/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID for log correlation
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"cage_empty"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"cage is empty"`
}

// fail aborts with an ErrorResponse. 5xx responses are logged through the
// request-scoped logger together with any errors attached to the context.
func fail(c *gin.Context, status int, code, msg string) {
	rid := c.Writer.Header().Get("X-Request-ID")
	if rid == "" {
		rid = c.GetString("requestID")
	}

	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg)
		if len(c.Errors) > 0 {
			ev = ev.Str("cause", c.Errors.String())
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: rid, Code: code, Message: msg})
}

// Fail is fail for the router's NoRoute and NoMethod hooks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
