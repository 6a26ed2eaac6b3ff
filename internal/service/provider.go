package service

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Saoudyahya/tournament-stream-relay/internal/events"
	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/mux"
)

// Provider is the slice of the Mux client the handlers depend on.
type Provider interface {
	CreateLiveStream(ctx context.Context, req models.CreateLiveStreamRequest) (*models.LiveStream, error)
	GetLiveStream(ctx context.Context, streamID string) (*models.LiveStream, error)
	ListLiveStreamsRaw(ctx context.Context, limit int) (json.RawMessage, error)
	DeleteLiveStream(ctx context.Context, streamID string) error
	FindLiveStreamByPlaybackID(ctx context.Context, playbackID string) (*models.LiveStream, error)
	GetAsset(ctx context.Context, assetID string) (*models.Asset, error)
	OverallViews(ctx context.Context, playbackID, timeframe string) (*models.ViewsOverall, error)
	CurrentViewers(ctx context.Context, playbackID string) (int64, error)
}

var _ Provider = (*mux.Client)(nil)

const publishTimeout = 3 * time.Second

// publish forwards event to the sinks without failing the caller.
func publish(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).
			Str("event_type", event.Type).
			Str("stream_id", event.StreamID).
			Msg("failed to publish event")
	}
}

// providerFailure logs err and replies 500 with its message.
func providerFailure(c *gin.Context, logger zerolog.Logger, msg string, err error) {
	logger.Error().Err(err).
		Int("provider_status", mux.StatusOf(err)).
		Str("route", c.FullPath()).
		Msg(msg)
	c.JSON(500, gin.H{"error": err.Error()})
}
