package mux

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"regexp"

	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
)

// ViewsWindow is the fixed window used for recording and live view counts.
const ViewsWindow = "30:days"

var timeframePattern = regexp.MustCompile(`^[1-9][0-9]{0,3}:(minutes|hours|days)$`)

// ValidTimeframe reports whether tf has the provider's relative "N:unit" form.
func ValidTimeframe(tf string) bool {
	return timeframePattern.MatchString(tf)
}

// OverallViews returns the aggregated views metric for one playback id.
func (c *Client) OverallViews(ctx context.Context, playbackID, timeframe string) (*models.ViewsOverall, error) {
	query := url.Values{
		"timeframe[]": {timeframe},
		"filters[]":   {"playback_id:" + playbackID},
	}
	overall, err := fetch[models.ViewsOverall](ctx, c, "views_overall", http.MethodGet, "/data/v1/metrics/views/overall", query, nil)
	if err != nil {
		return nil, fmt.Errorf("views for playback id %s: %w", playbackID, err)
	}
	return &overall, nil
}

type monitoringOverall struct {
	Value float64 `json:"value"`
}

// CurrentViewers returns the real-time concurrent viewer gauge for one
// playback id, read from the monitoring API's overall value.
func (c *Client) CurrentViewers(ctx context.Context, playbackID string) (int64, error) {
	query := url.Values{"filters[]": {"playback_id:" + playbackID}}

	overall, err := fetch[monitoringOverall](ctx, c, "current_viewers", http.MethodGet, "/data/v1/monitoring/metrics/current-concurrent-viewers/overall", query, nil)
	if err != nil {
		return 0, fmt.Errorf("concurrent viewers for playback id %s: %w", playbackID, err)
	}
	return int64(math.Round(overall.Value)), nil
}
