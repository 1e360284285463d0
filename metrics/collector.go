package metrics

import (
	"context"
	"fmt"
	"time"

	redisqueue "github.com/marcelsud/automation-connect/queue/redis"
	"github.com/marcelsud/automation-connect/webhook"
)

// StatsSource is the read side of the webhook log service
type StatsSource interface {
	Stats(ctx context.Context, service string) (webhook.Stats, error)
}

// LengthSource reports the send queue backlog; queue.Queue satisfies it
type LengthSource interface {
	Len(ctx context.Context) (int64, error)
}

// WorkerSource lists live worker heartbeats
type WorkerSource interface {
	ActiveWorkers(ctx context.Context) ([]redisqueue.WorkerHeartbeat, error)
}

// StoreCollector implements the Collector interface over the log store and the send queue
type StoreCollector struct {
	logs     StatsSource
	services func() []string
	queue    LengthSource
	workers  WorkerSource
	now      func() time.Time
}

type CollectorOption func(*StoreCollector)

func WithQueue(q LengthSource) CollectorOption {
	return func(c *StoreCollector) { c.queue = q }
}

func WithWorkers(w WorkerSource) CollectorOption {
	return func(c *StoreCollector) { c.workers = w }
}

// NewStoreCollector creates a collector; services lists the names to report per service
func NewStoreCollector(logs StatsSource, services func() []string, opts ...CollectorOption) *StoreCollector {
	c := &StoreCollector{logs: logs, services: services, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect gathers all metrics
func (c *StoreCollector) Collect(ctx context.Context) (Metrics, error) {
	services, err := c.GetServiceStats(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting service stats: %w", err)
	}

	overall, err := c.logs.Stats(ctx, "")
	if err != nil {
		return Metrics{}, fmt.Errorf("getting overall stats: %w", err)
	}

	length, err := c.GetQueueLength(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue length: %w", err)
	}

	workers, err := c.GetActiveWorkers(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting active workers: %w", err)
	}

	return Metrics{
		Services:    services,
		Overall:     NewServiceStats(overall),
		QueueLength: length,
		Workers:     workers,
		Timestamp:   c.now().UTC(),
	}, nil
}

// GetServiceStats returns aggregates for every configured service
func (c *StoreCollector) GetServiceStats(ctx context.Context) (map[string]ServiceStats, error) {
	out := make(map[string]ServiceStats)
	if c.services == nil {
		return out, nil
	}
	for _, service := range c.services() {
		st, err := c.logs.Stats(ctx, service)
		if err != nil {
			return nil, fmt.Errorf("loading stats for %s: %w", service, err)
		}
		out[service] = NewServiceStats(st)
	}
	return out, nil
}

// GetQueueLength is 0 when no queue is configured
func (c *StoreCollector) GetQueueLength(ctx context.Context) (int64, error) {
	if c.queue == nil {
		return 0, nil
	}
	return c.queue.Len(ctx)
}

func (c *StoreCollector) GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error) {
	workers := []WorkerInfo{}
	if c.workers == nil {
		return workers, nil
	}
	beats, err := c.workers.ActiveWorkers(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range beats {
		workers = append(workers, WorkerInfo{
			WorkerID:      b.WorkerID,
			Status:        b.Status,
			LastHeartbeat: b.LastHeartbeat,
		})
	}
	return workers, nil
}
