package server

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Saoudyahya/tournament-stream-relay/internal/metrics"
	"github.com/Saoudyahya/tournament-stream-relay/internal/service"
)

type Handlers struct {
	Streams    *service.StreamService
	Recordings *service.RecordingService
	Analytics  *service.AnalyticsService
	Chat       *service.ChatHandler
	Webhooks   *service.WebhookHandler
}

type RouterOptions struct {
	Version        string
	StaticDir      string
	AllowedOrigins []string
	Logger         zerolog.Logger

	// Metrics and Gatherer are optional. /metrics is only mounted with a Gatherer.
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

var endpoints = []string{
	"POST /api/create-stream",
	"GET /api/streams",
	"GET /api/stream/:id",
	"DELETE /api/stream/:id",
	"GET /api/stream/:id/viewers",
	"GET /api/stream/:id/analytics",
	"GET /api/playback/:id/stream",
	"GET /api/playback/:id/recording",
	"GET /recordings/by-playback/:id",
	"POST /api/chat-token",
	"POST /api/webhooks/mux",
	"GET /health",
}

func NewRouter(opts RouterOptions, h Handlers) *gin.Engine {
	router := gin.New()

	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(opts.Logger))
	router.Use(RecoveryMiddleware(opts.Logger))
	router.Use(CORSMiddleware(opts.AllowedOrigins))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}

	router.GET("/health", HealthCheck(opts.Version))
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	index := ""
	if opts.StaticDir != "" {
		if info, err := os.Stat(opts.StaticDir); err == nil && info.IsDir() {
			router.Static("/static", opts.StaticDir)
			if _, err := os.Stat(filepath.Join(opts.StaticDir, "index.html")); err == nil {
				index = filepath.Join(opts.StaticDir, "index.html")
			}
		}
	}
	router.GET("/", landingPage(index, opts.Version))

	api := router.Group("/api")
	{
		api.POST("/create-stream", h.Streams.CreateStream)
		api.GET("/streams", h.Streams.ListStreams)
		api.GET("/stream/:id", h.Streams.GetStream)
		api.DELETE("/stream/:id", h.Streams.DeleteStream)
		api.GET("/stream/:id/viewers", h.Analytics.GetCurrentViewers)
		api.GET("/stream/:id/analytics", h.Analytics.GetAnalytics)

		api.GET("/playback/:id/stream", h.Streams.GetStreamByPlayback)
		api.GET("/playback/:id/recording", h.Recordings.GetRecordingsByPlayback)

		api.POST("/chat-token", h.Chat.CreateToken)
		api.POST("/webhooks/mux", h.Webhooks.HandleMuxWebhook)
	}

	router.GET("/recordings/by-playback/:id", h.Recordings.GetRecordingsByPlayback)

	return router
}

func landingPage(index, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if index != "" {
			c.File(index)
			return
		}
		c.JSON(200, gin.H{
			"service":   ServiceName,
			"version":   version,
			"endpoints": endpoints,
		})
	}
}
