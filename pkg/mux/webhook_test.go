package mux

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"type":"video.live_stream.active"}`)
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	header := "t=" + ts + ",v1=" + SignWebhook(ts, body, "whsec")

	assert.NoError(t, VerifyWebhookSignature(header, body, "whsec", DefaultWebhookTolerance, now))
	assert.ErrorIs(t, VerifyWebhookSignature(header, body, "other", DefaultWebhookTolerance, now), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifyWebhookSignature(header, []byte(`{}`), "whsec", DefaultWebhookTolerance, now), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifyWebhookSignature(header, body, "whsec", DefaultWebhookTolerance, now.Add(10*time.Minute)), ErrSignatureExpired)
	assert.ErrorIs(t, VerifyWebhookSignature("", body, "whsec", DefaultWebhookTolerance, now), ErrSignatureMissing)
	assert.ErrorIs(t, VerifyWebhookSignature("t="+ts, body, "whsec", DefaultWebhookTolerance, now), ErrSignatureMissing)
}

func TestVerifyWebhookSignatureAcceptsAnyV1(t *testing.T) {
	body := []byte(`{}`)
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	header := "t=" + ts + ",v1=deadbeef,v1=" + SignWebhook(ts, body, "whsec")

	assert.NoError(t, VerifyWebhookSignature(header, body, "whsec", 0, now))
}
