package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSender struct {
	mu    sync.Mutex
	errs  []error
	calls []string
}

func (s *scriptedSender) Send(_ context.Context, driver string, _ map[string]any, _ automation.Options) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, driver)
	if len(s.errs) == 0 {
		return "ok", nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return nil, err
}

type beats struct {
	mu       sync.Mutex
	statuses []string
}

func (b *beats) SetWorkerHeartbeat(_ context.Context, _ string, status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, status)
	return nil
}

func drain(t *testing.T, w *queue.Worker, rounds int) {
	t.Helper()
	for i := 0; i < rounds; i++ {
		_, err := w.ProcessOnce(context.Background())
		require.NoError(t, err)
	}
}

func TestWorker(t *testing.T) {
	ctx := context.Background()

	t.Run("success - acked on first attempt", func(t *testing.T) {
		q := queue.NewMemory()
		sender := &scriptedSender{}
		hb := &beats{}
		w := queue.NewWorker("w1", q, sender, queue.WithHeartbeat(hb, time.Minute))

		_, err := q.Enqueue(ctx, queue.NewJob("slack", map[string]any{"text": "hi"}, nil))
		require.NoError(t, err)

		n, err := w.ProcessOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []string{"slack"}, sender.calls)
		assert.Equal(t, []string{"processing"}, hb.statuses)

		left, err := q.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, left)
	})

	t.Run("success - transient failure is retried", func(t *testing.T) {
		q := queue.NewMemory()
		sender := &scriptedSender{errs: []error{&automation.ServiceRequestError{Status: 503, Body: "busy"}}}
		w := queue.NewWorker("w1", q, sender)

		_, err := q.Enqueue(ctx, queue.NewJob("discord", map[string]any{}, nil))
		require.NoError(t, err)
		drain(t, w, 2)

		assert.Equal(t, []string{"discord", "discord"}, sender.calls)
		left, _ := q.Len(ctx)
		assert.Zero(t, left)
	})

	t.Run("error - gives up after max attempts", func(t *testing.T) {
		q := queue.NewMemory()
		fail := errors.New("timeout")
		sender := &scriptedSender{errs: []error{fail, fail, fail, fail}}
		w := queue.NewWorker("w1", q, sender, queue.WithMaxAttempts(3))

		_, err := q.Enqueue(ctx, queue.NewJob("n8n", map[string]any{}, nil))
		require.NoError(t, err)
		drain(t, w, 4)

		assert.Len(t, sender.calls, 3)
		left, _ := q.Len(ctx)
		assert.Zero(t, left)
	})

	t.Run("error - permanent failure is not retried", func(t *testing.T) {
		q := queue.NewMemory()
		sender := &scriptedSender{errs: []error{automation.MissingConfig("slack", "webhook_url")}}
		w := queue.NewWorker("w1", q, sender)

		_, err := q.Enqueue(ctx, queue.NewJob("slack", map[string]any{}, nil))
		require.NoError(t, err)
		drain(t, w, 2)

		assert.Len(t, sender.calls, 1)
	})

	t.Run("success - run stops with context", func(t *testing.T) {
		q := queue.NewMemory()
		w := queue.NewWorker("w1", q, &scriptedSender{})
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- w.Run(runCtx) }()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
	})
}

func TestMemory_Requeue(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory()
	_, err := q.Enqueue(ctx, queue.NewJob("x", nil, nil))
	require.NoError(t, err)

	ds, err := q.Consume(ctx, "c")
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.NoError(t, q.Requeue(ctx, ds[0], "boom"))

	ds, err = q.Consume(ctx, "c")
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, 2, ds[0].Job.Attempt)
	assert.Equal(t, "boom", ds[0].Job.LastError)
}

func TestPermanent(t *testing.T) {
	assert.True(t, queue.Permanent(&automation.DriverNotFoundError{Driver: "x"}))
	assert.True(t, queue.Permanent(automation.ErrUnsupportedAction))
	assert.False(t, queue.Permanent(&automation.RateLimitError{Driver: "x", Limit: 1}))
}
