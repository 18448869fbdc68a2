package notify

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Redis publishes events on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
}

// NewRedis connects to the Redis server at addr and verifies the connection.
func NewRedis(ctx context.Context, addr, channel string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}

	return &Redis{
		client:  client,
		channel: channel,
	}, nil
}

func (r *Redis) Notify(ctx context.Context, event Event) error {
	body, err := event.JSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = r.client.Publish(ctx, r.channel, body).Err()
	if err != nil {
		return fmt.Errorf("publish event to Redis: %w", err)
	}

	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
