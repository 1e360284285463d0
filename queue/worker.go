package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxAttempts       = 3
	DefaultHeartbeatInterval = 30 * time.Second
)

// Sender performs a send; dispatch.Client satisfies it
type Sender interface {
	Send(ctx context.Context, driver string, data map[string]any, opts automation.Options) (any, error)
}

// Heartbeater records worker liveness
type Heartbeater interface {
	SetWorkerHeartbeat(ctx context.Context, workerID, status string) error
}

// Worker consumes send jobs until its context ends
type Worker struct {
	id          string
	queue       Queue
	sender      Sender
	heartbeat   Heartbeater
	interval    time.Duration
	maxAttempts int
	logger      zerolog.Logger
}

type WorkerOption func(*Worker)

func WithMaxAttempts(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

func WithHeartbeat(h Heartbeater, interval time.Duration) WorkerOption {
	return func(w *Worker) {
		w.heartbeat = h
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithWorkerLogger(l zerolog.Logger) WorkerOption {
	return func(w *Worker) { w.logger = l }
}

func NewWorker(id string, q Queue, s Sender, opts ...WorkerOption) *Worker {
	w := &Worker{
		id:          id,
		queue:       q,
		sender:      s,
		interval:    DefaultHeartbeatInterval,
		maxAttempts: DefaultMaxAttempts,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With().Str("component", "worker").Str("worker_id", id).Logger()
	return w
}

// Run processes jobs until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Int("max_attempts", w.maxAttempts).Msg("worker started")
	w.beat(ctx, "idle")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("worker stopped")
			return nil
		case <-ticker.C:
			w.beat(ctx, "idle")
		default:
		}

		if _, err := w.ProcessOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error().Err(err).Msg("consuming send jobs")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOnce consumes one batch and returns how many jobs were handled
func (w *Worker) ProcessOnce(ctx context.Context) (int, error) {
	deliveries, err := w.queue.Consume(ctx, w.id)
	if err != nil {
		return 0, fmt.Errorf("consuming: %w", err)
	}
	if len(deliveries) > 0 {
		w.beat(ctx, "processing")
	}
	for _, d := range deliveries {
		w.handle(ctx, d)
	}
	return len(deliveries), nil
}

func (w *Worker) handle(ctx context.Context, d Delivery) {
	job := d.Job
	logger := w.logger.With().Str("job_id", job.ID).Str("driver", job.Driver).Int("attempt", job.Attempt).Logger()

	_, err := w.sender.Send(ctx, job.Driver, job.Data, automation.Options(job.Options))
	if err == nil {
		if err := w.queue.Ack(ctx, d); err != nil {
			logger.Error().Err(err).Msg("acknowledging job")
		}
		logger.Debug().Msg("job sent")
		return
	}

	if Permanent(err) || job.Attempt >= w.maxAttempts {
		logger.Error().Err(err).Bool("permanent", Permanent(err)).Msg("job dead, giving up")
		if err := w.queue.Ack(ctx, d); err != nil {
			logger.Error().Err(err).Msg("acknowledging dead job")
		}
		return
	}

	logger.Warn().Err(err).Msg("job failed, requeueing")
	if err := w.queue.Requeue(ctx, d, err.Error()); err != nil {
		logger.Error().Err(err).Msg("requeueing job")
	}
}

func (w *Worker) beat(ctx context.Context, status string) {
	if w.heartbeat == nil {
		return
	}
	if err := w.heartbeat.SetWorkerHeartbeat(ctx, w.id, status); err != nil {
		w.logger.Warn().Err(err).Msg("sending heartbeat")
	}
}

// Permanent reports errors a replay cannot fix
func Permanent(err error) bool {
	return errors.Is(err, automation.ErrDriverNotFound) ||
		errors.Is(err, automation.ErrConfiguration) ||
		errors.Is(err, automation.ErrUnsupportedAction)
}
