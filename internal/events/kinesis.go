package events

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Saoudyahya/tournament-stream-relay/pkg/aws"
)

// KinesisPublisher writes events to a Kinesis data stream, one record each,
// partitioned by stream id.
type KinesisPublisher struct {
	client *aws.KinesisClient
	logger zerolog.Logger
}

func NewKinesisPublisher(client *aws.KinesisClient, logger zerolog.Logger) *KinesisPublisher {
	return &KinesisPublisher{client: client, logger: logger}
}

func (k *KinesisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	seq, err := k.client.PutRecord(ctx, event.PartitionKey(), payload)
	if err != nil {
		return err
	}

	k.logger.Debug().
		Str("event_type", event.Type).
		Str("sequence_number", seq).
		Msg("event published to Kinesis")
	return nil
}

func (k *KinesisPublisher) Close() error { return nil }
