package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

/* SendJob is a queued outbound send
 * Carries everything needed to replay the send at least once
 */
type SendJob struct {
	ID         string         `json:"id"`
	Driver     string         `json:"driver"`
	Data       map[string]any `json:"data"`
	Options    map[string]any `json:"options,omitempty"`
	Attempt    int            `json:"attempt"`
	LastError  string         `json:"last_error,omitempty"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// NewJob creates a first-attempt job
func NewJob(driver string, data, options map[string]any) SendJob {
	return SendJob{
		ID:         uuid.New().String(),
		Driver:     driver,
		Data:       data,
		Options:    options,
		Attempt:    1,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Delivery is a job read from the queue, identified for acknowledgment
type Delivery struct {
	MessageID string
	Job       SendJob
}

// Queue is the transport of send jobs
type Queue interface {
	Enqueue(ctx context.Context, job SendJob) (string, error)
	/* Consume blocks briefly until jobs are available or ctx is cancelled */
	Consume(ctx context.Context, consumer string) ([]Delivery, error)
	Ack(ctx context.Context, d Delivery) error
	/* Requeue re-adds the job with the next attempt number and acks the original */
	Requeue(ctx context.Context, d Delivery, lastErr string) error
	Len(ctx context.Context) (int64, error)
}
