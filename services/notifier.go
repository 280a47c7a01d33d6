package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes realtime delivery lifecycle events. It is injected
// into the engine explicitly; there is no process-global handle. Publish
// failures are the caller's to swallow: lifecycle notifications are
// best-effort and must never fail the originating operation.
type Notifier interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// RedisNotifier implements Notifier on Redis pub/sub. Live clients
// subscribe to the delivery:* channels through the realtime gateway.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a new RedisNotifier.
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Publish(ctx context.Context, topic string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, topic, b).Err()
}
