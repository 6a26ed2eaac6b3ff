// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"github.com/Saoudyahya/tournament-stream-relay/internal/config"
	"github.com/Saoudyahya/tournament-stream-relay/internal/events"
	"github.com/Saoudyahya/tournament-stream-relay/internal/logging"
	"github.com/Saoudyahya/tournament-stream-relay/internal/metrics"
	"github.com/Saoudyahya/tournament-stream-relay/internal/server"
	"github.com/Saoudyahya/tournament-stream-relay/internal/service"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/aws"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/chat"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/mux"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration
	cfg := config.Load()

	logging.Configure(logging.Config{
		Level:   cfg.LogLevel,
		Service: server.ServiceName,
		Version: version,
	})
	logger := logging.WithComponent("main")
	logger.Info().
		Str("port", cfg.Port).
		Str("environment", cfg.Environment).
		Str("mux_base_url", cfg.MuxBaseURL).
		Msg("starting tournament stream relay")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.MuxTokenID == "" || cfg.MuxTokenSecret == "" {
		logger.Warn().Msg("MUX_TOKEN_ID or MUX_TOKEN_SECRET is not set; provider calls will be rejected")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	providerMetrics := metrics.NewProviderMetrics(registry)

	// Provider client
	muxClient := mux.New(mux.Options{
		BaseURL:     cfg.MuxBaseURL,
		TokenID:     cfg.MuxTokenID,
		TokenSecret: cfg.MuxTokenSecret,
		Timeout:     cfg.HTTPTimeout,
		RateLimit:   cfg.MuxRateLimit,
		RateBurst:   cfg.MuxRateBurst,
		Metrics:     providerMetrics,
		Logger:      logging.WithComponent("mux-client"),
	})

	// Chat issuer stays nil without credentials so the handler can report it.
	var issuer service.TokenIssuer
	if cfg.ChatConfigured() {
		ti, err := chat.NewTokenIssuer(cfg.StreamAPIKey, cfg.StreamAPISecret, cfg.StreamTokenTTL)
		if err != nil {
			logger.Error().Err(err).Msg("chat token issuer disabled")
		} else {
			issuer = ti
		}
	} else {
		logger.Warn().Msg("STREAM_API_KEY or STREAM_API_SECRET is not set; chat tokens are disabled")
	}

	publisher := newPublisher(cfg, logger)

	// Initialize services
	streamService := service.NewStreamService(cfg, muxClient, publisher)
	recordingService := service.NewRecordingService(cfg, muxClient)
	analyticsService := service.NewAnalyticsService(muxClient)
	chatHandler := service.NewChatHandler(issuer)
	webhookHandler := service.NewWebhookHandler(cfg, publisher)

	router := server.NewRouter(server.RouterOptions{
		Version:        version,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logging.WithComponent("http"),
		Metrics:        httpMetrics,
		Gatherer:       registry,
	}, server.Handlers{
		Streams:    streamService,
		Recordings: recordingService,
		Analytics:  analyticsService,
		Chat:       chatHandler,
		Webhooks:   webhookHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		logger.Fatal().Err(err).Str("port", cfg.Port).Msg("failed to listen")
	}
	if cfg.MaxConnections > 0 {
		lis = netutil.LimitListener(lis, cfg.MaxConnections)
		logger.Info().Int("max_connections", cfg.MaxConnections).Msg("inbound connections capped")
	}

	var grpcServer *server.GRPCServer
	if cfg.GRPCEnabled() {
		grpcServer = server.NewGRPCServer(logging.WithComponent("grpc"))
		if _, err := grpcServer.Start(cfg.GRPCListenPort()); err != nil {
			logger.Error().Err(err).Msg("gRPC health server disabled")
			grpcServer = nil
		}
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", lis.Addr().String()).Msg("HTTP server started")
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	if grpcServer != nil {
		grpcServer.SetServing(true)
	}

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info().Str("signal", sig.String()).Msg("shutting down server")

	if grpcServer != nil {
		grpcServer.SetServing(false)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	if grpcServer != nil {
		grpcServer.Stop()
	}
	if err := publisher.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close event sinks")
	}

	logger.Info().Msg("server exited")
}

// newPublisher builds the configured event sinks. A sink that cannot be
// reached at startup is skipped.
func newPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	var sinks events.Multi

	if cfg.RedisAddr != "" {
		pub, err := events.NewRedisPublisher(context.Background(), events.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis event sink disabled")
		} else {
			logger.Info().Str("channel", cfg.RedisChannel).Msg("publishing events to redis")
			sinks = append(sinks, pub)
		}
	}

	if cfg.KinesisStreamName != "" {
		client, err := aws.NewKinesisClient(cfg.AWSRegion, cfg.KinesisStreamName)
		if err != nil {
			logger.Warn().Err(err).Str("stream", cfg.KinesisStreamName).Msg("kinesis event sink disabled")
		} else {
			logger.Info().Str("stream", client.StreamName()).Str("region", cfg.AWSRegion).Msg("publishing events to kinesis")
			sinks = append(sinks, events.NewKinesisPublisher(client, logging.WithComponent("kinesis-publisher")))
		}
	}

	switch len(sinks) {
	case 0:
		return events.Nop{}
	case 1:
		return sinks[0]
	default:
		return sinks
	}
}
