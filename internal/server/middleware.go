// internal/server/middleware.go
package server

import (
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	ServiceName   = "tournament-stream-relay"
	healthMessage = "Tournament streaming backend is running"
)

// CORSMiddleware allows every origin when allowedOrigins is empty or holds
// "*". Otherwise only listed origins are echoed back.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	wildcard := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")

		switch {
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(allowedOrigins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+RequestIDHeader)
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware keeps an incoming X-Request-ID or mints one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// LoggingMiddleware writes one structured line per request.
func LoggingMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status == http.StatusNotFound:
			// Unknown playback ids are an expected outcome.
			event = logger.Info()
		case status >= 400:
			event = logger.Warn()
		case path == "/health" || path == "/metrics":
			event = logger.Debug()
		default:
			event = logger.Info()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("request_id", c.GetString(requestIDKey)).
			Int("bytes", c.Writer.Size()).
			Msg("request")
	}
}

// RecoveryMiddleware turns a handler panic into a 500 JSON reply.
func RecoveryMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
	})
}

// HealthCheck reports liveness only. It never consults the provider.
func HealthCheck(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, models.HealthResponse{
			Status:    "ok",
			Message:   healthMessage,
			Service:   ServiceName,
			Timestamp: time.Now().Unix(),
			Version:   version,
		})
	}
}
