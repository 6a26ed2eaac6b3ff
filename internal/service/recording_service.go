package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Saoudyahya/tournament-stream-relay/internal/config"
	"github.com/Saoudyahya/tournament-stream-relay/internal/fanout"
	"github.com/Saoudyahya/tournament-stream-relay/internal/logging"
	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/mux"
)

const (
	DefaultRecordingLimit = 10
	MaxRecordingLimit     = 10
)

// RecordingService aggregates the recordings of a live stream and their view
// counts into one summary per playback id.
type RecordingService struct {
	provider    Provider
	fanOutLimit int
	logger      zerolog.Logger
}

func NewRecordingService(cfg *config.Config, provider Provider) *RecordingService {
	return &RecordingService{
		provider:    provider,
		fanOutLimit: cfg.FanOutLimit,
		logger:      logging.WithComponent("recording-service"),
	}
}

// ParseRecordingLimit turns the raw limit query value into the number of
// recordings to return. Missing, non-numeric and non-positive values fall
// back to DefaultRecordingLimit.
func ParseRecordingLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return DefaultRecordingLimit
	}
	return min(n, MaxRecordingLimit)
}

// GetRecordingsByPlayback serves both the /api and the /recordings routes.
func (s *RecordingService) GetRecordingsByPlayback(c *gin.Context) {
	playbackID := c.Param("id")
	limit := ParseRecordingLimit(c.Query("limit"))

	summary, err := s.Summarize(c.Request.Context(), playbackID, limit)
	switch {
	case errors.Is(err, mux.ErrStreamNotFound):
		s.logger.Info().Str("playback_id", playbackID).Msg("no live stream for playback id")
		c.JSON(404, models.NotFoundResponse{Error: "Stream not found", PlaybackID: playbackID})
	case err != nil:
		s.logger.Error().Err(err).
			Str("playback_id", playbackID).
			Int("provider_status", mux.StatusOf(err)).
			Msg("failed to aggregate recordings")
		c.JSON(500, models.RecordingSummary{
			PlaybackID: playbackID,
			Recordings: []models.Recording{},
			Error:      err.Error(),
		})
	default:
		c.JSON(200, summary)
	}
}

// Summarize resolves the live stream owning playbackID and collects up to
// limit of its most recent recordings. Only the stream lookup can fail the
// call; per-recording failures shrink the result instead.
func (s *RecordingService) Summarize(ctx context.Context, playbackID string, limit int) (*models.RecordingSummary, error) {
	stream, err := s.provider.FindLiveStreamByPlaybackID(ctx, playbackID)
	if err != nil {
		return nil, err
	}

	summary := &models.RecordingSummary{
		PlaybackID:   playbackID,
		StreamID:     stream.ID,
		StreamStatus: stream.Status,
		Recordings:   []models.Recording{},
		TotalAssets:  len(stream.RecentAssetIDs),
	}

	if len(stream.RecentAssetIDs) == 0 {
		summary.LiveStreamViews = s.liveViews(ctx, playbackID)
		summary.TotalViews = summary.LiveStreamViews
		return summary, nil
	}

	selected := selectRecent(stream.RecentAssetIDs, limit)

	var (
		g         errgroup.Group
		liveViews int64
	)
	g.Go(func() error {
		liveViews = s.liveViews(ctx, playbackID)
		return nil
	})
	results := fanout.Settle(ctx, s.fanOutLimit, selected, s.recording)
	_ = g.Wait()

	recordings, failed := fanout.Partition(results)
	if len(failed) > 0 {
		s.logger.Warn().
			Err(errors.Join(failed...)).
			Str("playback_id", playbackID).
			Int("failed", len(failed)).
			Int("selected", len(selected)).
			Msg("dropped recordings that could not be loaded")
	}

	summary.HasRecordings = true
	summary.Recordings = recordings
	summary.ReturnedRecordings = len(recordings)
	summary.LiveStreamViews = liveViews
	summary.TotalViews = liveViews
	for _, r := range recordings {
		summary.TotalViews += r.Views
	}
	if summary.ReturnedRecordings != summary.TotalAssets {
		summary.Note = fmt.Sprintf("Showing %d of %d recordings.", summary.ReturnedRecordings, summary.TotalAssets)
	}

	return summary, nil
}

// recording loads one asset and its 30-day view count.
func (s *RecordingService) recording(ctx context.Context, assetID string) (models.Recording, error) {
	asset, err := s.provider.GetAsset(ctx, assetID)
	if err != nil {
		return models.Recording{}, err
	}

	rec := models.Recording{
		AssetID:    asset.ID,
		PlaybackID: asset.PrimaryPlaybackID(),
		Status:     asset.Status,
		Duration:   asset.Duration,
	}
	if rec.AssetID == "" {
		rec.AssetID = assetID
	}
	if t := models.ParseProviderTime(asset.CreatedAt); !t.IsZero() {
		rec.CreatedAt = &t
	}
	if rec.PlaybackID == "" {
		return rec, nil
	}

	views, err := s.provider.OverallViews(ctx, rec.PlaybackID, mux.ViewsWindow)
	if err != nil {
		return models.Recording{}, fmt.Errorf("views for asset %s: %w", assetID, err)
	}
	rec.Views = views.TotalViews
	return rec, nil
}

// liveViews is the live stream's own 30-day view count, zero when the
// provider has no data for it.
func (s *RecordingService) liveViews(ctx context.Context, playbackID string) int64 {
	views, err := s.provider.OverallViews(ctx, playbackID, mux.ViewsWindow)
	if err != nil {
		s.logger.Debug().Err(err).Str("playback_id", playbackID).Msg("no live stream views")
		return 0
	}
	return views.TotalViews
}

// selectRecent returns the last limit ids, newest first.
func selectRecent(ids []string, limit int) []string {
	n := min(limit, len(ids))
	out := make([]string, 0, n)
	for i := len(ids) - 1; i >= len(ids)-n; i-- {
		out = append(out, ids[i])
	}
	return out
}
