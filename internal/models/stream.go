// internal/models/stream.go
package models

import (
	"strconv"
	"time"
)

type StreamStatus string

const (
	StreamStatusIdle         StreamStatus = "idle"
	StreamStatusActive       StreamStatus = "active"
	StreamStatusDisconnected StreamStatus = "disconnected"
)

type PlaybackPolicy string

const (
	PlaybackPolicyPublic PlaybackPolicy = "public"
	PlaybackPolicySigned PlaybackPolicy = "signed"
)

type PlaybackID struct {
	ID     string         `json:"id"`
	Policy PlaybackPolicy `json:"policy"`
}

// LiveStream is the provider's live stream resource.
type LiveStream struct {
	ID              string       `json:"id"`
	StreamKey       string       `json:"stream_key"`
	Status          StreamStatus `json:"status"`
	PlaybackIDs     []PlaybackID `json:"playback_ids"`
	RecentAssetIDs  []string     `json:"recent_asset_ids"`
	ActiveAssetID   string       `json:"active_asset_id,omitempty"`
	ReconnectWindow float64      `json:"reconnect_window"`
	CreatedAt       string       `json:"created_at"`
}

// PrimaryPlaybackID returns the first playback id. ok is false when the
// provider returned none, which callers treat as a data-integrity error.
func (s *LiveStream) PrimaryPlaybackID() (string, bool) {
	if len(s.PlaybackIDs) == 0 || s.PlaybackIDs[0].ID == "" {
		return "", false
	}
	return s.PlaybackIDs[0].ID, true
}

func (s *LiveStream) HasPlaybackID(id string) bool {
	for _, p := range s.PlaybackIDs {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Asset is a recording produced from a live stream.
type Asset struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Duration     float64      `json:"duration"`
	LiveStreamID string       `json:"live_stream_id,omitempty"`
	PlaybackIDs  []PlaybackID `json:"playback_ids"`
	CreatedAt    string       `json:"created_at"`
}

func (a *Asset) PrimaryPlaybackID() string {
	if len(a.PlaybackIDs) == 0 {
		return ""
	}
	return a.PlaybackIDs[0].ID
}

// NewAssetSettings applies to the recordings the provider creates from a live stream.
type NewAssetSettings struct {
	PlaybackPolicy []PlaybackPolicy `json:"playback_policy"`
}

type CreateLiveStreamRequest struct {
	PlaybackPolicy   []PlaybackPolicy  `json:"playback_policy"`
	NewAssetSettings *NewAssetSettings `json:"new_asset_settings,omitempty"`
	ReconnectWindow  int               `json:"reconnect_window"`
}

// ViewsOverall is the provider's aggregate of the views metric over a timeframe.
type ViewsOverall struct {
	Value            float64 `json:"value"`
	TotalViews       int64   `json:"total_views"`
	TotalWatchTime   int64   `json:"total_watch_time"` // milliseconds
	TotalPlayingTime int64   `json:"total_playing_time"`
}

// ParseProviderTime converts the provider's unix-seconds string into a time.
// Unparseable input yields the zero time.
func ParseProviderTime(raw string) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
