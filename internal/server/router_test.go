package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saoudyahya/tournament-stream-relay/internal/config"
	"github.com/Saoudyahya/tournament-stream-relay/internal/metrics"
	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
	"github.com/Saoudyahya/tournament-stream-relay/internal/service"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/mux"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the full router against a provider stub that lists no
// streams and fails everything else.
func newTestRouter(t *testing.T, opts RouterOptions) *gin.Engine {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet && r.URL.Path == "/video/v1/live-streams" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"type":"unavailable","messages":["maintenance"]}}`))
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{MuxRTMPURL: "rtmps://example/app", FanOutLimit: 4}
	client := mux.New(mux.Options{BaseURL: upstream.URL, Timeout: time.Second, DisableBreaker: true})

	return NewRouter(opts, Handlers{
		Streams:    service.NewStreamService(cfg, client, nil),
		Recordings: service.NewRecordingService(cfg, client),
		Analytics:  service.NewAnalyticsService(client),
		Chat:       service.NewChatHandler(nil),
		Webhooks:   service.NewWebhookHandler(cfg, nil),
	})
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthIgnoresProviderState(t *testing.T) {
	r := newTestRouter(t, RouterOptions{Version: "1.2.3", Logger: zerolog.Nop()})

	// The provider fails every non-list call.
	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/create-stream", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Tournament streaming backend is running", resp.Message)
	assert.Equal(t, ServiceName, resp.Service)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.NotZero(t, resp.Timestamp)
}

func TestPlaybackLookupThroughRouter(t *testing.T) {
	r := newTestRouter(t, RouterOptions{Logger: zerolog.Nop()})

	for _, path := range []string{"/api/playback/pb1/stream", "/api/playback/pb1/recording", "/recordings/by-playback/pb1"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), `"playbackId":"pb1"`, path)
	}
}

func TestAccessLogLevels(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRouter(t, RouterOptions{Logger: zerolog.New(&buf)})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/playback/pb1/recording", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"route":"/api/playback/:id/recording"`)
	assert.NotContains(t, buf.String(), `"level":"warn"`)

	buf.Reset()
	req := httptest.NewRequest(http.MethodPost, "/api/chat-token", strings.NewReader(`{"userId":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestChatTokenUnconfiguredThroughRouter(t *testing.T) {
	r := newTestRouter(t, RouterOptions{Logger: zerolog.Nop()})

	req := httptest.NewRequest(http.MethodPost, "/api/chat-token", strings.NewReader(`{"userId":"u1","username":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "STREAM_API_KEY")
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r := newTestRouter(t, RouterOptions{Logger: zerolog.Nop()})
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(t, RouterOptions{Logger: zerolog.Nop()})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = serve(r, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, RouterOptions{Logger: zerolog.Nop(), AllowedOrigins: []string{"https://cup.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/create-stream", nil)
	req.Header.Set("Origin", "https://cup.example")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cup.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	open := newTestRouter(t, RouterOptions{Logger: zerolog.Nop()})
	w = serve(open, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestRouter(t, RouterOptions{
		Logger:   zerolog.Nop(),
		Metrics:  metrics.NewHTTPMetrics(reg),
		Gatherer: reg,
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/api/playback/pb1/stream", nil))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `stream_relay_http_requests_total{method="GET",route="/api/playback/:id/stream",status_code="404"} 1`)
}

func TestLandingPage(t *testing.T) {
	r := newTestRouter(t, RouterOptions{Logger: zerolog.Nop(), Version: "dev"})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/create-stream")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Cup</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	r = newTestRouter(t, RouterOptions{Logger: zerolog.Nop(), StaticDir: dir})
	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Cup</h1>")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
