package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MUX_BASE_URL", "HTTP_TIMEOUT", "FANOUT_LIMIT", "GRPC_PORT", "STREAM_API_KEY", "STREAM_API_SECRET", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, defaultMuxBaseURL, cfg.MuxBaseURL)
	assert.Equal(t, defaultRTMPURL, cfg.MuxRTMPURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10, cfg.FanOutLimit)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "9090", cfg.GRPCListenPort())
	assert.False(t, cfg.ChatConfigured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("MUX_RATE_LIMIT", "2.5")
	t.Setenv("FANOUT_LIMIT", "4")
	t.Setenv("STREAM_API_KEY", "key")
	t.Setenv("STREAM_API_SECRET", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("GRPC_PORT", "off")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2.5, cfg.MuxRateLimit)
	assert.Equal(t, 4, cfg.FanOutLimit)
	assert.True(t, cfg.ChatConfigured())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.GRPCEnabled())
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("FANOUT_LIMIT", "many")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.FanOutLimit)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}
