package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher is the only surface the sale engine depends on. The transport
// behind it is swappable; RedisBroker is the production implementation.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// RedisBroker delivers events over Redis pub/sub channels.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker constructs RedisBroker.
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

// Publish sends one event to a topic.
func (b *RedisBroker) Publish(ctx context.Context, topic string, event Event) error {
	if b == nil || b.client == nil {
		return fmt.Errorf("broadcast: broker not initialised")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("broadcast: marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("broadcast: publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe listens on one or more topics and delivers decoded events until
// the context is cancelled. Undecodable messages are dropped.
func (b *RedisBroker) Subscribe(ctx context.Context, topics ...string) (<-chan Event, func() error) {
	sub := b.client.Subscribe(ctx, topics...)
	events := make(chan Event, 16)

	go func() {
		defer close(events)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, sub.Close
}
