package metrics

import (
	"context"
	"time"

	"github.com/marcelsud/automation-connect/webhook"
)

// Metrics represents the current state of the automation system.
type Metrics struct {
	// Services maps a configured driver name to its webhook log aggregates
	Services map[string]ServiceStats `json:"services"`

	// Overall aggregates every stored entry
	Overall ServiceStats `json:"overall"`

	// QueueLength is the number of send jobs waiting or unacknowledged
	QueueLength int64 `json:"queue_length"`

	// Workers lists the queue workers with a live heartbeat
	Workers []WorkerInfo `json:"workers"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// ServiceStats is the reporting view of webhook.Stats
type ServiceStats struct {
	Total                 int64   `json:"total"`
	Successful            int64   `json:"successful"`
	Failed                int64   `json:"failed"`
	Processing            int64   `json:"processing"`
	SuccessRate           float64 `json:"success_rate"`
	AverageProcessingTime float64 `json:"average_processing_time_ms"`
}

func NewServiceStats(s webhook.Stats) ServiceStats {
	return ServiceStats{
		Total:                 s.Total,
		Successful:            s.Successful,
		Failed:                s.Failed,
		Processing:            s.Processing,
		SuccessRate:           s.SuccessRate(),
		AverageProcessingTime: s.AverageProcessingTime(),
	}
}

// WorkerInfo represents information about an active worker.
type WorkerInfo struct {
	WorkerID string `json:"worker_id"`

	// Status is the current status of the worker ("idle", "processing")
	Status string `json:"status"`

	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Collector defines the interface for collecting metrics from the automation system.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetServiceStats returns webhook aggregates per configured driver
	GetServiceStats(ctx context.Context) (map[string]ServiceStats, error)

	// GetQueueLength returns the number of pending send jobs
	GetQueueLength(ctx context.Context) (int64, error)

	// GetActiveWorkers returns the workers with a live heartbeat
	GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error)
}
