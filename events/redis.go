package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes events on {prefix}:{service}:{event} channels so
// consumers can PSUBSCRIBE by service or event
type RedisPublisher struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisPublisher(client redis.UniversalClient, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultName
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

// Channel returns the channel an event is published on
func (p *RedisPublisher) Channel(e Event) string {
	event := e.Event
	if event == "" {
		event = "_"
	}
	return fmt.Sprintf("%s:%s:%s", p.prefix, e.Service, event)
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := p.client.Publish(ctx, p.Channel(e), data).Err(); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

// Subscribe listens on pattern (e.g. "automation.webhook.received:slack:*") until ctx ends
func (p *RedisPublisher) Subscribe(ctx context.Context, pattern string, handler Handler) error {
	sub := p.client.PSubscribe(ctx, pattern)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				continue
			}
			if err := deliver(ctx, handler, e); err != nil {
				return err
			}
		}
	}
}
