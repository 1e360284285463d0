package queue

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process Queue for tests and single-process deployments
type Memory struct {
	mu       sync.Mutex
	seq      int
	pending  []Delivery
	inflight map[string]Delivery
	wait     time.Duration
}

func NewMemory() *Memory {
	return &Memory{inflight: make(map[string]Delivery), wait: 100 * time.Millisecond}
}

func (m *Memory) Enqueue(_ context.Context, job SendJob) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := strconv.Itoa(m.seq)
	m.pending = append(m.pending, Delivery{MessageID: id, Job: job})
	return id, nil
}

// Consume returns pending jobs, waiting briefly when there are none
func (m *Memory) Consume(ctx context.Context, _ string) ([]Delivery, error) {
	if out := m.take(); len(out) > 0 {
		return out, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.wait):
	}
	return m.take(), nil
}

func (m *Memory) take() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.pending
	m.pending = nil
	for _, d := range out {
		m.inflight[d.MessageID] = d
	}
	return out
}

func (m *Memory) Ack(_ context.Context, d Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, d.MessageID)
	return nil
}

func (m *Memory) Requeue(ctx context.Context, d Delivery, lastErr string) error {
	job := d.Job
	job.Attempt++
	job.LastError = lastErr
	if _, err := m.Enqueue(ctx, job); err != nil {
		return err
	}
	return m.Ack(ctx, d)
}

// Len counts pending and unacknowledged jobs
func (m *Memory) Len(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.pending) + len(m.inflight)), nil
}
