//go:build integration

package events_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/events"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisPublisher_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	container, err := testcontainersredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	defer container.Terminate(context.Background())

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: strings.TrimPrefix(addr, "redis://")})
	defer client.Close()

	pub := events.NewRedisPublisher(client, "test.webhook")
	received := make(chan events.Event, 1)

	subCtx, stop := context.WithCancel(ctx)
	defer stop()
	go pub.Subscribe(subCtx, "test.webhook:slack:*", func(_ context.Context, e events.Event) error {
		received <- e
		return nil
	})
	// give PSUBSCRIBE time to register before publishing
	time.Sleep(200 * time.Millisecond)

	e := events.New("", "slack", "message", []byte(`{"text":"hi"}`), map[string]any{"status": "ok"})
	assert.Equal(t, "test.webhook:slack:message", pub.Channel(e))
	require.NoError(t, pub.Publish(ctx, e))

	select {
	case got := <-received:
		assert.Equal(t, e.ID, got.ID)
		assert.JSONEq(t, `{"text":"hi"}`, string(got.Payload))
	case <-ctx.Done():
		t.Fatal("event not received")
	}
}
