package events

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
)

// RedisPublisher publishes events as JSON on a pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// NewRedisPublisher connects and pings the server before returning.
func NewRedisPublisher(ctx context.Context, cfg RedisConfig) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisPublisherWithClient(client, cfg.Channel), nil
}

func NewRedisPublisherWithClient(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = "stream-events"
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (r *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event to Redis: %w", err)
	}
	return nil
}

func (r *RedisPublisher) Close() error {
	return r.client.Close()
}
