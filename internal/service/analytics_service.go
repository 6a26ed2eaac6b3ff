package service

import (
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Saoudyahya/tournament-stream-relay/internal/logging"
	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/mux"
)

const DefaultAnalyticsTimeframe = "7:days"

type AnalyticsService struct {
	provider Provider
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAnalyticsService(provider Provider) *AnalyticsService {
	return &AnalyticsService{
		provider: provider,
		logger:   logging.WithComponent("analytics-service"),
		now:      time.Now,
	}
}

// GetCurrentViewers reports the real-time concurrent viewer gauge.
func (s *AnalyticsService) GetCurrentViewers(c *gin.Context) {
	playbackID := c.Param("id")

	viewers, err := s.provider.CurrentViewers(c.Request.Context(), playbackID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("playback_id", playbackID).
			Int("provider_status", mux.StatusOf(err)).
			Msg("failed to get current viewers")
		c.JSON(500, models.ViewersResponse{
			PlaybackID: playbackID,
			Timestamp:  s.now().UTC(),
			Error:      err.Error(),
		})
		return
	}

	c.JSON(200, models.ViewersResponse{
		PlaybackID:     playbackID,
		CurrentViewers: viewers,
		Timestamp:      s.now().UTC(),
	})
}

// GetAnalytics reports cumulative views and watch time over a timeframe such
// as "7:days".
func (s *AnalyticsService) GetAnalytics(c *gin.Context) {
	playbackID := c.Param("id")
	timeframe := c.DefaultQuery("timeframe", DefaultAnalyticsTimeframe)

	if !mux.ValidTimeframe(timeframe) {
		c.JSON(400, gin.H{"error": "invalid timeframe, expected <n>:minutes|hours|days"})
		return
	}

	views, err := s.provider.OverallViews(c.Request.Context(), playbackID, timeframe)
	if err != nil {
		s.logger.Error().Err(err).
			Str("playback_id", playbackID).
			Str("timeframe", timeframe).
			Int("provider_status", mux.StatusOf(err)).
			Msg("failed to get analytics")
		c.JSON(500, models.AnalyticsResponse{
			PlaybackID: playbackID,
			Timeframe:  timeframe,
			Error:      err.Error(),
		})
		return
	}

	watchSeconds := float64(views.TotalWatchTime) / 1000
	resp := models.AnalyticsResponse{
		PlaybackID:     playbackID,
		Timeframe:      timeframe,
		TotalViews:     views.TotalViews,
		TotalWatchTime: round2(watchSeconds),
	}
	if views.TotalViews > 0 {
		resp.AverageViewDuration = round2(watchSeconds / float64(views.TotalViews))
	}

	c.JSON(200, resp)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
