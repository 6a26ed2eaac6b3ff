// internal/service/webhook_handler.go
package service

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Saoudyahya/tournament-stream-relay/internal/config"
	"github.com/Saoudyahya/tournament-stream-relay/internal/events"
	"github.com/Saoudyahya/tournament-stream-relay/internal/logging"
	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
	"github.com/Saoudyahya/tournament-stream-relay/pkg/mux"
)

const (
	webhookSource  = "mux-webhook"
	maxWebhookBody = 1 << 20
)

// WebhookHandler receives the provider's lifecycle callbacks
// (video.live_stream.active, video.asset.ready, ...) and forwards them to the
// event sinks.
type WebhookHandler struct {
	secret    string
	tolerance time.Duration
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

type WebhookEvent struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	CreatedAt string        `json:"created_at"`
	Object    WebhookObject `json:"object"`
	Data      WebhookData   `json:"data"`
}

type WebhookObject struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type WebhookData struct {
	ID           string              `json:"id"`
	Status       string              `json:"status"`
	LiveStreamID string              `json:"live_stream_id"`
	PlaybackIDs  []models.PlaybackID `json:"playback_ids"`
	Duration     float64             `json:"duration"`
}

func NewWebhookHandler(cfg *config.Config, publisher events.Publisher) *WebhookHandler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &WebhookHandler{
		secret:    cfg.MuxWebhookSecret,
		tolerance: mux.DefaultWebhookTolerance,
		publisher: publisher,
		logger:    logging.WithComponent("webhook-handler"),
		now:       time.Now,
	}
}

func (h *WebhookHandler) HandleMuxWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn().Int64("limit", tooLarge.Limit).Msg("webhook body too large")
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if h.secret != "" {
		sig := c.GetHeader(mux.SignatureHeader)
		if err := mux.VerifyWebhookSignature(sig, body, h.secret, h.tolerance, h.now()); err != nil {
			h.logger.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("rejected webhook")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
			return
		}
	}

	var hook WebhookEvent
	if err := json.Unmarshal(body, &hook); err != nil || hook.Type == "" {
		h.logger.Warn().Err(err).Msg("malformed webhook payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	event := hook.toEvent()
	h.logger.Info().
		Str("webhook_id", hook.ID).
		Str("event_type", hook.Type).
		Str("stream_id", event.StreamID).
		Str("asset_id", event.AssetID).
		Str("status", hook.Data.Status).
		Msg("webhook received")

	publish(c.Request.Context(), h.publisher, h.logger, event)

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// toEvent maps a provider callback onto a lifecycle event. The event keeps the
// provider's type name.
func (w WebhookEvent) toEvent() events.Event {
	event := events.New(w.Type, webhookSource)
	if w.ID != "" {
		event.Data = map[string]any{"webhook_id": w.ID}
	}

	switch w.Object.Type {
	case "live_stream":
		event.StreamID = w.Object.ID
	case "asset":
		event.AssetID = w.Object.ID
		event.StreamID = w.Data.LiveStreamID
	default:
		event.StreamID = w.Data.LiveStreamID
	}
	if len(w.Data.PlaybackIDs) > 0 {
		event.PlaybackID = w.Data.PlaybackIDs[0].ID
	}

	if w.Data.Status != "" || w.Data.Duration > 0 {
		if event.Data == nil {
			event.Data = map[string]any{}
		}
		if w.Data.Status != "" {
			event.Data["status"] = w.Data.Status
		}
		if w.Data.Duration > 0 {
			event.Data["duration"] = w.Data.Duration
		}
	}
	return event
}
