package dispatch

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/queue"
	"github.com/marcelsud/automation-connect/ratelimit"
	"github.com/rs/zerolog"
)

const (
	// OptionRateLimitKey selects the rate limit identifier of a send
	OptionRateLimitKey  = "rate_limit_key"
	DefaultRateLimitKey = "global"
)

// Send outcomes reported to the Observer
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
	OutcomeQueued      = "queued"
)

// Resolver is the part of the driver manager outbound sends depend on
type Resolver interface {
	Resolve(ctx context.Context, name string) (automation.Driver, error)
	DefaultDriver() string
}

type Observer interface {
	ObserveSend(ctx context.Context, driver, outcome string)
}

// Result of Dispatch: either the driver response or the queued job id
type Result struct {
	Queued   bool   `json:"queued"`
	JobID    string `json:"job_id,omitempty"`
	Response any    `json:"response,omitempty"`
}

/* Client is the outbound entry point
 * Errors from drivers propagate unmodified so callers decide on retry
 */
type Client struct {
	drivers  Resolver
	limiter  ratelimit.Limiter
	queue    queue.Queue
	observer Observer
	logger   zerolog.Logger
}

type Option func(*Client)

// WithLimiter enables outbound rate limiting
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithQueue makes Dispatch enqueue instead of sending inline
func WithQueue(q queue.Queue) Option {
	return func(c *Client) { c.queue = q }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(drivers Resolver, opts ...Option) *Client {
	c := &Client{drivers: drivers, limiter: ratelimit.Noop{}, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "dispatch").Logger()
	return c
}

// Send resolves name (or the default driver), checks the rate limit and sends
func (c *Client) Send(ctx context.Context, name string, data map[string]any, opts automation.Options) (any, error) {
	if name == "" {
		name = c.drivers.DefaultDriver()
	}
	opts = maps.Clone(opts)
	key := opts.String(OptionRateLimitKey, DefaultRateLimitKey)
	delete(opts, OptionRateLimitKey)

	if err := c.limiter.Allow(ctx, name, key); err != nil {
		if errors.Is(err, automation.ErrRateLimitExceeded) {
			c.observe(ctx, name, OutcomeRateLimited)
			return nil, err
		}
		c.logger.Warn().Err(err).Str("driver", name).Msg("rate limiter unavailable, allowing send")
	}

	driver, err := c.drivers.Resolve(ctx, name)
	if err != nil {
		c.observe(ctx, name, OutcomeError)
		return nil, err
	}
	if !driver.SupportsOutgoingActions() {
		c.observe(ctx, name, OutcomeError)
		return nil, fmt.Errorf("driver %s: %w", name, automation.ErrUnsupportedAction)
	}

	if data == nil {
		data = map[string]any{}
	}
	resp, err := driver.Send(ctx, data, opts)
	if err != nil {
		c.observe(ctx, name, OutcomeError)
		c.logger.Debug().Err(err).Str("driver", name).Msg("send failed")
		return nil, err
	}
	c.observe(ctx, name, OutcomeSuccess)
	return resp, nil
}

// Dispatch enqueues the send when a queue is configured, else sends inline
func (c *Client) Dispatch(ctx context.Context, name string, data map[string]any, opts automation.Options) (Result, error) {
	if c.queue == nil {
		resp, err := c.Send(ctx, name, data, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{Response: resp}, nil
	}

	if name == "" {
		name = c.drivers.DefaultDriver()
	}
	job := queue.NewJob(name, data, opts)
	if _, err := c.queue.Enqueue(ctx, job); err != nil {
		return Result{}, fmt.Errorf("enqueueing send: %w", err)
	}
	c.observe(ctx, name, OutcomeQueued)
	c.logger.Debug().Str("driver", name).Str("job_id", job.ID).Msg("send queued")
	return Result{Queued: true, JobID: job.ID}, nil
}

func (c *Client) observe(ctx context.Context, driver, outcome string) {
	if c.observer != nil {
		c.observer.ObserveSend(ctx, driver, outcome)
	}
}
