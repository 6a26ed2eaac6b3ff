// Package events publishes stream lifecycle events to optional sinks.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	TypeStreamCreated = "stream.created"
	TypeStreamDeleted = "stream.deleted"
)

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"event_type"`
	StreamID   string         `json:"stream_id,omitempty"`
	PlaybackID string         `json:"playback_id,omitempty"`
	AssetID    string         `json:"asset_id,omitempty"`
	Source     string         `json:"source"`
	Timestamp  int64          `json:"timestamp"`
	Data       map[string]any `json:"data,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType, source string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().Unix(),
	}
}

// PartitionKey groups events of one stream together.
func (e Event) PartitionKey() string {
	if e.StreamID != "" {
		return e.StreamID
	}
	if e.AssetID != "" {
		return e.AssetID
	}
	return e.Type
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Multi fans an event out to every sink and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
