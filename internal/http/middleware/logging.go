// Package middleware holds the Gin middleware shared by the rabbitry API.
//
// This file covers request correlation and caller identity, structured access
// logging, and panic recovery. Recommended order on the engine:
//
//  1. RequestID()
//  2. Actor()
//  3. Logger() or RedactingLogger()
//  4. Recovery()
//
// Handlers fetch the request-scoped logger through LoggerFrom and the caller
// identity through ActorFrom.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"

	actorKey = "actor"
	// HeaderActor names the caller (a keeper, a script, the bot gateway).
	// There is no authentication; the value only scopes idempotency records,
	// rate-limit buckets and logs.
	HeaderActor = "X-Actor-ID"
	// AnonymousActor is used when no actor header is sent.
	AnonymousActor = "anonymous"
	maxActorLen    = 64

	loggerKey         = "logger"
	maxQueryLogLength = 2048
)

// RequestID reuses the incoming X-Request-ID or mints a UUIDv4, stores it in
// the context and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Actor reads X-Actor-ID into the context. Blank or oversized values fall
// back to AnonymousActor.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		a := strings.TrimSpace(c.GetHeader(HeaderActor))
		if a == "" || len(a) > maxActorLen {
			a = AnonymousActor
		}
		c.Set(actorKey, a)
		c.Next()
	}
}

// ActorFrom returns the caller identity set by Actor, or AnonymousActor.
func ActorFrom(c *gin.Context) string {
	if v, ok := c.Get(actorKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return AnonymousActor
}

// Logger emits one structured access line per request and attaches a
// request-scoped zerolog.Logger under the "logger" key. Level follows the
// outcome: error for 5xx or collected gin errors, warn for 4xx, info otherwise.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("actor", ActorFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()
		c.Set(loggerKey, &l)

		c.Next()

		ev := l.With().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			ev.Error().Msg("request")
		case status >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

// Recovery turns a panic into a JSON 500 with code "internal_error" and logs
// the stack. If the handler already wrote a response only the status is set.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid, _ := c.Get(requestIDKey)
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", asString(rid)).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header("Content-Type", "application/json")
			c.Header(requestIDHeader, asString(rid))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": asString(rid),
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or a copy of the global one
// when Logger is not installed. Never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate cuts s to max bytes and appends an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
