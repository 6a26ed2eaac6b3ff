package models

import "time"

type CreateStreamResponse struct {
	StreamKey  string `json:"streamKey"`
	StreamID   string `json:"streamId"`
	PlaybackID string `json:"playbackId"`
	RTMPURL    string `json:"rtmpUrl"`
}

type StreamStatusResponse struct {
	Status     StreamStatus `json:"status"`
	PlaybackID string       `json:"playbackId"`
}

type DeleteStreamResponse struct {
	Message string `json:"message"`
}

type PlaybackStreamResponse struct {
	StreamID       string       `json:"streamId"`
	PlaybackID     string       `json:"playbackId"`
	Status         StreamStatus `json:"status"`
	IsLive         bool         `json:"isLive"`
	CreatedAt      *time.Time   `json:"createdAt,omitempty"`
	RecentAssetIDs []string     `json:"recentAssetIds"`
	ActiveAssetID  string       `json:"activeAssetId,omitempty"`
}

type NotFoundResponse struct {
	Error      string `json:"error"`
	PlaybackID string `json:"playbackId"`
}

type Recording struct {
	AssetID    string     `json:"assetId"`
	PlaybackID string     `json:"playbackId,omitempty"`
	Status     string     `json:"status"`
	Duration   float64    `json:"duration"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	Views      int64      `json:"views"`
}

// RecordingSummary is the aggregated recordings and views payload for one
// playback id. On failure the same shape is returned zeroed with Error set.
type RecordingSummary struct {
	PlaybackID         string       `json:"playbackId"`
	StreamID           string       `json:"streamId,omitempty"`
	StreamStatus       StreamStatus `json:"streamStatus,omitempty"`
	HasRecordings      bool         `json:"hasRecordings"`
	Recordings         []Recording  `json:"recordings"`
	TotalAssets        int          `json:"totalAssets"`
	ReturnedRecordings int          `json:"returnedRecordings"`
	LiveStreamViews    int64        `json:"liveStreamViews"`
	TotalViews         int64        `json:"totalViews"`
	Note               string       `json:"note,omitempty"`
	Error              string       `json:"error,omitempty"`
}

type ViewersResponse struct {
	PlaybackID     string    `json:"playbackId"`
	CurrentViewers int64     `json:"currentViewers"`
	Timestamp      time.Time `json:"timestamp"`
	Error          string    `json:"error,omitempty"`
}

// AnalyticsResponse reports watch time and average view duration in seconds.
type AnalyticsResponse struct {
	PlaybackID          string  `json:"playbackId"`
	Timeframe           string  `json:"timeframe"`
	TotalViews          int64   `json:"totalViews"`
	TotalWatchTime      float64 `json:"totalWatchTime"`
	AverageViewDuration float64 `json:"averageViewDuration"`
	Error               string  `json:"error,omitempty"`
}

type ChatTokenRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type ChatTokenResponse struct {
	Token  string `json:"token"`
	APIKey string `json:"apiKey"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Service   string `json:"service"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version"`
}
