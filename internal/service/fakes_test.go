package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/Saoudyahya/tournament-stream-relay/internal/config"
	"github.com/Saoudyahya/tournament-stream-relay/internal/events"
	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/mux"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errUpstream = &mux.APIError{StatusCode: 502, Type: "upstream_error", Messages: []string{"provider down"}}

// fakeProvider is an in-memory Provider keyed by ids.
type fakeProvider struct {
	mu sync.Mutex

	streams    []models.LiveStream
	listErr    error
	created    *models.LiveStream
	createErr  error
	createReq  models.CreateLiveStreamRequest
	deleteErr  error
	deleted    []string
	assets     map[string]models.Asset
	assetErrs  map[string]error
	views      map[string]int64
	watchMS    map[string]int64
	viewErrs   map[string]error
	viewers    int64
	viewersErr error
	timeframes []string
}

func (f *fakeProvider) CreateLiveStream(_ context.Context, req models.CreateLiveStreamRequest) (*models.LiveStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeProvider) GetLiveStream(_ context.Context, streamID string) (*models.LiveStream, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	for i := range f.streams {
		if f.streams[i].ID == streamID {
			return &f.streams[i], nil
		}
	}
	return nil, &mux.APIError{StatusCode: 404, Type: "not_found", Messages: []string{"live stream not found"}}
}

func (f *fakeProvider) ListLiveStreamsRaw(_ context.Context, _ int) (json.RawMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	data, err := json.Marshal(map[string]any{"data": f.streams})
	return json.RawMessage(data), err
}

func (f *fakeProvider) DeleteLiveStream(_ context.Context, streamID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, streamID)
	return nil
}

func (f *fakeProvider) FindLiveStreamByPlaybackID(_ context.Context, playbackID string) (*models.LiveStream, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	for i := range f.streams {
		if f.streams[i].HasPlaybackID(playbackID) {
			return &f.streams[i], nil
		}
	}
	return nil, fmt.Errorf("playback id %s: %w", playbackID, mux.ErrStreamNotFound)
}

func (f *fakeProvider) GetAsset(_ context.Context, assetID string) (*models.Asset, error) {
	if err := f.assetErrs[assetID]; err != nil {
		return nil, err
	}
	asset, ok := f.assets[assetID]
	if !ok {
		return nil, &mux.APIError{StatusCode: 404, Type: "not_found"}
	}
	return &asset, nil
}

func (f *fakeProvider) OverallViews(_ context.Context, playbackID, timeframe string) (*models.ViewsOverall, error) {
	f.mu.Lock()
	f.timeframes = append(f.timeframes, timeframe)
	f.mu.Unlock()
	if err := f.viewErrs[playbackID]; err != nil {
		return nil, err
	}
	return &models.ViewsOverall{TotalViews: f.views[playbackID], TotalWatchTime: f.watchMS[playbackID]}, nil
}

func (f *fakeProvider) CurrentViewers(context.Context, string) (int64, error) {
	return f.viewers, f.viewersErr
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func testConfig() *config.Config {
	return &config.Config{
		MuxRTMPURL:  "rtmps://global-live.mux.com:443/app",
		FanOutLimit: 10,
	}
}

// streamWithAssets builds a live stream owning playbackID with n recordings
// a1..an, each with playback id pa<i> and i views.
func streamWithAssets(f *fakeProvider, playbackID string, n int) {
	f.assets = map[string]models.Asset{}
	if f.views == nil {
		f.views = map[string]int64{}
	}
	stream := models.LiveStream{
		ID:          "ls-" + playbackID,
		Status:      models.StreamStatusIdle,
		PlaybackIDs: []models.PlaybackID{{ID: playbackID, Policy: models.PlaybackPolicyPublic}},
	}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("a%d", i)
		pb := fmt.Sprintf("pa%d", i)
		stream.RecentAssetIDs = append(stream.RecentAssetIDs, id)
		f.assets[id] = models.Asset{
			ID:          id,
			Status:      "ready",
			Duration:    float64(60 * i),
			PlaybackIDs: []models.PlaybackID{{ID: pb, Policy: models.PlaybackPolicyPublic}},
			CreatedAt:   fmt.Sprintf("%d", 1700000000+i),
		}
		f.views[pb] = int64(i)
	}
	f.streams = append(f.streams, stream)
}

func perform(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var errBoom = errors.New("boom")
