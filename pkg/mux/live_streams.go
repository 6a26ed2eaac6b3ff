package mux

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
)

// MaxListLimit is the largest page the provider returns for live stream listings.
const MaxListLimit = 100

const liveStreamsPath = "/video/v1/live-streams"

func (c *Client) CreateLiveStream(ctx context.Context, req models.CreateLiveStreamRequest) (*models.LiveStream, error) {
	stream, err := fetch[models.LiveStream](ctx, c, "create_live_stream", http.MethodPost, liveStreamsPath, nil, req)
	if err != nil {
		return nil, fmt.Errorf("create live stream: %w", err)
	}
	return &stream, nil
}

func (c *Client) GetLiveStream(ctx context.Context, streamID string) (*models.LiveStream, error) {
	stream, err := fetch[models.LiveStream](ctx, c, "get_live_stream", http.MethodGet, liveStreamsPath+"/"+url.PathEscape(streamID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get live stream %s: %w", streamID, err)
	}
	return &stream, nil
}

func (c *Client) ListLiveStreams(ctx context.Context, limit int) ([]models.LiveStream, error) {
	streams, err := fetch[[]models.LiveStream](ctx, c, "list_live_streams", http.MethodGet, liveStreamsPath, listQuery(limit), nil)
	if err != nil {
		return nil, fmt.Errorf("list live streams: %w", err)
	}
	return streams, nil
}

// ListLiveStreamsRaw returns the provider's list payload untouched.
func (c *Client) ListLiveStreamsRaw(ctx context.Context, limit int) (json.RawMessage, error) {
	var raw json.RawMessage
	if _, err := c.call(ctx, "list_live_streams", http.MethodGet, liveStreamsPath, listQuery(limit), nil, &raw); err != nil {
		return nil, fmt.Errorf("list live streams: %w", err)
	}
	return raw, nil
}

func (c *Client) DeleteLiveStream(ctx context.Context, streamID string) error {
	if _, err := c.call(ctx, "delete_live_stream", http.MethodDelete, liveStreamsPath+"/"+url.PathEscape(streamID), nil, nil, nil); err != nil {
		return fmt.Errorf("delete live stream %s: %w", streamID, err)
	}
	return nil
}

// FindLiveStreamByPlaybackID scans the first page of live streams for the one
// owning playbackID. It returns an error matching ErrStreamNotFound when none
// does.
func (c *Client) FindLiveStreamByPlaybackID(ctx context.Context, playbackID string) (*models.LiveStream, error) {
	streams, err := c.ListLiveStreams(ctx, MaxListLimit)
	if err != nil {
		return nil, err
	}
	for i := range streams {
		if streams[i].HasPlaybackID(playbackID) {
			return &streams[i], nil
		}
	}
	return nil, fmt.Errorf("playback id %s: %w", playbackID, ErrStreamNotFound)
}

func listQuery(limit int) url.Values {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}
