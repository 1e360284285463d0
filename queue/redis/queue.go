package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/automation-connect/queue"
	"github.com/redis/go-redis/v9"
)

/* Redis Streams implementation of queue.Queue
 * One stream, one consumer group; workers are consumers of the group
 */

const (
	StreamKey = "automation:send_jobs"
	GroupName = "automation-workers"
	batchSize = 10

	// DefaultClaimIdle is how long a delivered job may stay unacknowledged before another worker claims it
	DefaultClaimIdle = 5 * time.Minute
)

type Queue struct {
	client    redis.UniversalClient
	block     time.Duration
	claimIdle time.Duration
}

type Option func(*Queue)

// WithClaimIdle sets the idle time after which pending jobs of other consumers are reclaimed
func WithClaimIdle(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.claimIdle = d
		}
	}
}

func New(client redis.UniversalClient, opts ...Option) *Queue {
	q := &Queue{client: client, block: time.Second, claimIdle: DefaultClaimIdle}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) ensureGroup(ctx context.Context) {
	// BUSYGROUP when the group already exists
	q.client.XGroupCreateMkStream(ctx, StreamKey, GroupName, "0")
}

// Enqueue adds the job to the stream
func (q *Queue) Enqueue(ctx context.Context, job queue.SendJob) (string, error) {
	q.ensureGroup(ctx)
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshaling job: %w", err)
	}
	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]interface{}{"job_id": job.ID, "job": data},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("adding to stream: %w", err)
	}
	return id, nil
}

// Consume first reclaims jobs left pending by consumers that stopped before Ack,
// then reads new jobs for consumer using the consumer group
func (q *Queue) Consume(ctx context.Context, consumer string) ([]queue.Delivery, error) {
	q.ensureGroup(ctx)

	claimed, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    GroupName,
		Consumer: consumer,
		MinIdle:  q.claimIdle,
		Start:    "0-0",
		Count:    batchSize,
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("claiming pending jobs: %w", err)
	}
	if deliveries := q.decode(ctx, claimed); len(deliveries) > 0 {
		return deliveries, nil
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    GroupName,
		Consumer: consumer,
		Streams:  []string{StreamKey, ">"},
		Count:    batchSize,
		Block:    q.block,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return q.decode(ctx, streams[0].Messages), nil
}

// decode turns stream messages into deliveries; malformed messages are acknowledged and skipped
func (q *Queue) decode(ctx context.Context, msgs []redis.XMessage) []queue.Delivery {
	deliveries := make([]queue.Delivery, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values["job"].(string)
		if !ok {
			q.client.XAck(ctx, StreamKey, GroupName, msg.ID)
			continue
		}
		var job queue.SendJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			q.client.XAck(ctx, StreamKey, GroupName, msg.ID)
			continue
		}
		deliveries = append(deliveries, queue.Delivery{MessageID: msg.ID, Job: job})
	}
	return deliveries
}

// Ack acknowledges and removes the message
func (q *Queue) Ack(ctx context.Context, d queue.Delivery) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAck(ctx, StreamKey, GroupName, d.MessageID)
		pipe.XDel(ctx, StreamKey, d.MessageID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("acknowledging message: %w", err)
	}
	return nil
}

// Requeue adds the next attempt and acknowledges the current one in one transaction
func (q *Queue) Requeue(ctx context.Context, d queue.Delivery, lastErr string) error {
	job := d.Job
	job.Attempt++
	job.LastError = lastErr
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling job: %w", err)
	}
	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: StreamKey,
			Values: map[string]interface{}{"job_id": job.ID, "job": data},
		})
		pipe.XAck(ctx, StreamKey, GroupName, d.MessageID)
		pipe.XDel(ctx, StreamKey, d.MessageID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("requeueing job: %w", err)
	}
	return nil
}

// Len is the number of jobs in the stream not yet acknowledged
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.XLen(ctx, StreamKey).Result()
	if err != nil {
		return 0, fmt.Errorf("reading stream length: %w", err)
	}
	return n, nil
}
