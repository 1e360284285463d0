package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/automation-connect/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of webhook.Repository
 * Uses a counter for monotonic ids, one hash per entry and
 * per-service stats hashes kept in step by the completion script
 */

const (
	keyPrefix   = "automation:webhook_log" // Hash naming: automation:webhook_log:{id}
	seqKey      = keyPrefix + ":seq"
	statsPrefix = "automation:webhook_stats" // Hash naming: automation:webhook_stats:{service}
	statsAllKey = "automation:webhook_stats_all"
)

// completeScript applies a terminal transition only from processing.
// Returns 1 on success, 0 when the entry is already terminal, -1 when missing.
var completeScript = redis.NewScript(`
local status = redis.call('HGET', KEYS[1], 'status')
if not status then return -1 end
if status ~= 'processing' then return 0 end
redis.call('HSET', KEYS[1], 'status', ARGV[1], 'error_message', ARGV[2], 'response', ARGV[3],
	'processing_time_ms', ARGV[4], 'processed_at', ARGV[5], 'updated_at', ARGV[5])
for i = 2, 3 do
	redis.call('HINCRBY', KEYS[i], 'processing', -1)
	redis.call('HINCRBY', KEYS[i], ARGV[1], 1)
	redis.call('HINCRBY', KEYS[i], 'timed', 1)
	redis.call('HINCRBYFLOAT', KEYS[i], 'processing_ms', ARGV[4])
end
return 1
`)

type Repository struct {
	client redis.UniversalClient
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{
		client: client,
	}, nil
}

// NewRepositoryWithClient shares an existing client, e.g. with the rate limiter
func NewRepositoryWithClient(client redis.UniversalClient) *Repository {
	return &Repository{client: client}
}

// Append stores the entry hash and counts it as processing
func (r *Repository) Append(ctx context.Context, entry webhook.Log) (int64, error) {
	id, err := r.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return 0, fmt.Errorf("allocating webhook log id: %w", err)
	}

	headersJSON, err := json.Marshal(entry.Headers)
	if err != nil {
		return 0, fmt.Errorf("marshaling headers: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, entryKey(id), map[string]interface{}{
			"id":         id,
			"service":    entry.Service,
			"event":      entry.Event,
			"payload":    string(entry.Payload),
			"headers":    string(headersJSON),
			"ip_address": entry.IPAddress,
			"user_agent": entry.UserAgent,
			"status":     webhook.Processing.String(),
			"created_at": entry.CreatedAt.UnixMilli(),
			"updated_at": entry.UpdatedAt.UnixMilli(),
		})
		for _, key := range []string{statsKey(entry.Service), statsAllKey} {
			pipe.HIncrBy(ctx, key, "total", 1)
			pipe.HIncrBy(ctx, key, "processing", 1)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("storing webhook log: %w", err)
	}
	return id, nil
}

// Update applies the completion atomically
func (r *Repository) Update(ctx context.Context, id int64, c webhook.Completion) error {
	service, err := r.client.HGet(ctx, entryKey(id), "service").Result()
	if errors.Is(err, redis.Nil) {
		return webhook.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading webhook log: %w", err)
	}

	res, err := completeScript.Run(ctx, r.client,
		[]string{entryKey(id), statsKey(service), statsAllKey},
		c.Status.String(),
		c.ErrorMessage,
		string(c.Response),
		strconv.FormatFloat(c.ProcessingTimeMs, 'f', 2, 64),
		c.ProcessedAt.UnixMilli(),
	).Int()
	if err != nil {
		return fmt.Errorf("completing webhook log: %w", err)
	}
	switch res {
	case -1:
		return webhook.ErrNotFound
	case 0:
		return webhook.ErrNotProcessing
	}
	return nil
}

// Get retrieves a log entry by id
func (r *Repository) Get(ctx context.Context, id int64) (webhook.Log, error) {
	data, err := r.client.HGetAll(ctx, entryKey(id)).Result()
	if err != nil {
		return webhook.Log{}, fmt.Errorf("getting webhook log: %w", err)
	}
	if len(data) == 0 {
		return webhook.Log{}, webhook.ErrNotFound
	}

	var headers map[string]string
	if h := data["headers"]; h != "" && h != "null" {
		if err := json.Unmarshal([]byte(h), &headers); err != nil {
			return webhook.Log{}, fmt.Errorf("unmarshaling headers: %w", err)
		}
	}

	entry := webhook.Log{
		ID:           id,
		Service:      data["service"],
		Event:        data["event"],
		Payload:      json.RawMessage(data["payload"]),
		Headers:      headers,
		IPAddress:    data["ip_address"],
		UserAgent:    data["user_agent"],
		Status:       webhook.NewStatus(data["status"]),
		ErrorMessage: data["error_message"],
		CreatedAt:    time.UnixMilli(parseInt64(data["created_at"])).UTC(),
		UpdatedAt:    time.UnixMilli(parseInt64(data["updated_at"])).UTC(),
	}
	if resp := data["response"]; resp != "" {
		entry.Response = json.RawMessage(resp)
	}
	if ms, ok := data["processing_time_ms"]; ok {
		v, _ := strconv.ParseFloat(ms, 64)
		entry.ProcessingTimeMs = &v
	}
	if at, ok := data["processed_at"]; ok {
		t := time.UnixMilli(parseInt64(at)).UTC()
		entry.ProcessedAt = &t
	}
	return entry, nil
}

// Stats reads the aggregate hash for service, or all services when empty
func (r *Repository) Stats(ctx context.Context, service string) (webhook.Stats, error) {
	key := statsAllKey
	if service != "" {
		key = statsKey(service)
	}
	data, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return webhook.Stats{}, fmt.Errorf("getting webhook stats: %w", err)
	}
	ms, _ := strconv.ParseFloat(data["processing_ms"], 64)
	return webhook.Stats{
		Total:             parseInt64(data["total"]),
		Successful:        parseInt64(data[webhook.Success.String()]),
		Failed:            parseInt64(data[webhook.Failed.String()]),
		Processing:        parseInt64(data["processing"]),
		Timed:             parseInt64(data["timed"]),
		TotalProcessingMs: ms,
	}, nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

func entryKey(id int64) string {
	return fmt.Sprintf("%s:%d", keyPrefix, id)
}

func statsKey(service string) string {
	return fmt.Sprintf("%s:%s", statsPrefix, service)
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
