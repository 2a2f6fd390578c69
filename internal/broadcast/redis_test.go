package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestBroker(t *testing.T) *RedisBroker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBroker(client)
}

func TestPublishSubscribeRoundtrip(t *testing.T) {
	broker := newTestBroker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topic := TerminalTopic("till-1")
	events, closeSub := broker.Subscribe(ctx, topic)
	defer func() { _ = closeSub() }()

	// Give the subscriber a moment to register before publishing.
	time.Sleep(50 * time.Millisecond)

	sent := NewEvent(EventSaleItemAdded, map[string]any{"sale_number": "POS-000042"})
	require.NoError(t, broker.Publish(ctx, topic, sent))

	select {
	case got := <-events:
		require.Equal(t, sent.ID, got.ID)
		require.Equal(t, EventSaleItemAdded, got.Type)
		require.Equal(t, "POS-000042", got.Payload["sale_number"])
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSubscribeMultipleTopics(t *testing.T) {
	broker := newTestBroker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, closeSub := broker.Subscribe(ctx, RoleTopic("manager"), RoleTopic("owner"))
	defer func() { _ = closeSub() }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, broker.Publish(ctx, RoleTopic("manager"), NewEvent(EventSaleCompleted, nil)))
	require.NoError(t, broker.Publish(ctx, RoleTopic("owner"), NewEvent(EventStockAlert, nil)))

	types := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case got := <-events:
			types[got.Type] = true
		case <-time.After(2 * time.Second):
			t.Fatal("expected two events")
		}
	}
	require.True(t, types[EventSaleCompleted])
	require.True(t, types[EventStockAlert])
}

func TestTopicNames(t *testing.T) {
	require.Equal(t, "terminal:till-7", TerminalTopic("till-7"))
	require.Equal(t, "role:manager", RoleTopic("manager"))
	require.Equal(t, "user:42", UserTopic(42))
}
