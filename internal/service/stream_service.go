// internal/service/stream_service.go
package service

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Saoudyahya/tournament-stream-relay/internal/config"
	"github.com/Saoudyahya/tournament-stream-relay/internal/events"
	"github.com/Saoudyahya/tournament-stream-relay/internal/logging"
	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/mux"
)

const (
	eventSource            = "stream-relay"
	defaultReconnectWindow = 60
)

type StreamService struct {
	provider  Provider
	publisher events.Publisher
	rtmpURL   string
	logger    zerolog.Logger
}

func NewStreamService(cfg *config.Config, provider Provider, publisher events.Publisher) *StreamService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &StreamService{
		provider:  provider,
		publisher: publisher,
		rtmpURL:   cfg.MuxRTMPURL,
		logger:    logging.WithComponent("stream-service"),
	}
}

func (s *StreamService) CreateStream(c *gin.Context) {
	ctx := c.Request.Context()

	stream, err := s.provider.CreateLiveStream(ctx, models.CreateLiveStreamRequest{
		PlaybackPolicy: []models.PlaybackPolicy{models.PlaybackPolicyPublic},
		NewAssetSettings: &models.NewAssetSettings{
			PlaybackPolicy: []models.PlaybackPolicy{models.PlaybackPolicyPublic},
		},
		ReconnectWindow: defaultReconnectWindow,
	})
	if err != nil {
		providerFailure(c, s.logger, "failed to create live stream", err)
		return
	}

	playbackID, ok := stream.PrimaryPlaybackID()
	if !ok {
		providerFailure(c, s.logger, "created live stream has no playback id", fmt.Errorf("live stream %s: %w", stream.ID, mux.ErrNoPlaybackIDs))
		return
	}

	s.logger.Info().
		Str("stream_id", stream.ID).
		Str("playback_id", playbackID).
		Msg("live stream created")

	event := events.New(events.TypeStreamCreated, eventSource)
	event.StreamID = stream.ID
	event.PlaybackID = playbackID
	publish(ctx, s.publisher, s.logger, event)

	c.JSON(200, models.CreateStreamResponse{
		StreamKey:  stream.StreamKey,
		StreamID:   stream.ID,
		PlaybackID: playbackID,
		RTMPURL:    s.rtmpURL,
	})
}

func (s *StreamService) GetStream(c *gin.Context) {
	streamID := c.Param("id")

	stream, err := s.provider.GetLiveStream(c.Request.Context(), streamID)
	if err != nil {
		providerFailure(c, s.logger, "failed to get live stream", err)
		return
	}

	playbackID, ok := stream.PrimaryPlaybackID()
	if !ok {
		providerFailure(c, s.logger, "live stream has no playback id", fmt.Errorf("live stream %s: %w", stream.ID, mux.ErrNoPlaybackIDs))
		return
	}

	c.JSON(200, models.StreamStatusResponse{
		Status:     stream.Status,
		PlaybackID: playbackID,
	})
}

// ListStreams relays the provider's list payload as-is.
func (s *StreamService) ListStreams(c *gin.Context) {
	raw, err := s.provider.ListLiveStreamsRaw(c.Request.Context(), mux.MaxListLimit)
	if err != nil {
		providerFailure(c, s.logger, "failed to list live streams", err)
		return
	}
	c.Data(200, "application/json; charset=utf-8", raw)
}

func (s *StreamService) DeleteStream(c *gin.Context) {
	ctx := c.Request.Context()
	streamID := c.Param("id")

	if err := s.provider.DeleteLiveStream(ctx, streamID); err != nil {
		providerFailure(c, s.logger, "failed to delete live stream", err)
		return
	}

	s.logger.Info().Str("stream_id", streamID).Msg("live stream deleted")

	event := events.New(events.TypeStreamDeleted, eventSource)
	event.StreamID = streamID
	publish(ctx, s.publisher, s.logger, event)

	c.JSON(200, models.DeleteStreamResponse{Message: "Stream deleted successfully"})
}

// GetStreamByPlayback resolves the live stream that owns a playback id.
func (s *StreamService) GetStreamByPlayback(c *gin.Context) {
	playbackID := c.Param("id")

	stream, err := s.provider.FindLiveStreamByPlaybackID(c.Request.Context(), playbackID)
	if errors.Is(err, mux.ErrStreamNotFound) {
		s.logger.Info().Str("playback_id", playbackID).Msg("no live stream for playback id")
		c.JSON(404, models.NotFoundResponse{Error: "Stream not found", PlaybackID: playbackID})
		return
	}
	if err != nil {
		providerFailure(c, s.logger, "failed to resolve playback id", err)
		return
	}

	resp := models.PlaybackStreamResponse{
		StreamID:       stream.ID,
		PlaybackID:     playbackID,
		Status:         stream.Status,
		IsLive:         stream.Status == models.StreamStatusActive,
		RecentAssetIDs: stream.RecentAssetIDs,
		ActiveAssetID:  stream.ActiveAssetID,
	}
	if resp.RecentAssetIDs == nil {
		resp.RecentAssetIDs = []string{}
	}
	if t := models.ParseProviderTime(stream.CreatedAt); !t.IsZero() {
		resp.CreatedAt = &t
	}

	c.JSON(200, resp)
}
