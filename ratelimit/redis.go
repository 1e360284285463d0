package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/redis/go-redis/v9"
)

/* Redis is a fixed one-minute window limiter shared by every process
 * INCR and EXPIRE run in one MULTI/EXEC so each request gets a unique count
 */
type Redis struct {
	client redis.UniversalClient
	policy Policy
	now    func() time.Time
}

// NewRedis creates a shared limiter on client
func NewRedis(client redis.UniversalClient, policy Policy) *Redis {
	return &Redis{client: client, policy: policy, now: time.Now}
}

// Allow implements Limiter
func (r *Redis) Allow(ctx context.Context, driver, identifier string) error {
	if !r.policy.Enabled {
		return nil
	}
	limit := r.policy.LimitFor(driver)
	window := r.now().Truncate(time.Minute)
	key := Key(driver, identifier) + ":" + strconv.FormatInt(window.Unix(), 10)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 2*time.Minute)
		return nil
	})
	if err != nil {
		return fmt.Errorf("incrementing rate limit counter: %w", err)
	}
	if incr.Val() > int64(limit) {
		return &automation.RateLimitError{Driver: driver, Identifier: identifier, Limit: limit}
	}
	return nil
}
