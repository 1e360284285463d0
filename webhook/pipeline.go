package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/events"
	"github.com/marcelsud/automation-connect/ratelimit"
	"github.com/rs/zerolog"
)

const (
	MsgServiceNotSupported = "Service not supported"
	MsgInvalidSignature    = "Invalid webhook signature"
	MsgProcessingFailed    = "Webhook processing failed"
	MsgInternalError       = "Internal server error"
	MsgRateLimitExceeded   = "Rate limit exceeded"
)

// Resolver is the part of the driver manager the pipeline depends on
type Resolver interface {
	HasDriver(name string) bool
	Resolve(ctx context.Context, name string) (automation.Driver, error)
}

// Observer receives one observation per processed request
type Observer interface {
	ObserveWebhook(ctx context.Context, service string, statusCode int, elapsed time.Duration)
}

// Outcome is the HTTP status and JSON envelope for one inbound request
type Outcome struct {
	Status int
	Body   map[string]any
	// LogID is the persisted entry id, 0 when nothing was stored
	LogID int64
	// Err is the cause of a non-2xx outcome
	Err error
}

/* Pipeline binds lookup, verification, invocation, logging and publication
 * for one inbound request. It holds no per-request state.
 */
type Pipeline struct {
	drivers   Resolver
	logs      UseCase
	publisher events.Publisher
	limiter   ratelimit.Limiter
	observer  Observer
	logger    zerolog.Logger
	eventName string
	logging   bool
	debug     bool
	now       func() time.Time
}

type PipelineOption func(*Pipeline)

func WithPublisher(p events.Publisher) PipelineOption {
	return func(pl *Pipeline) { pl.publisher = p }
}

// WithLimiter enables inbound rate limiting keyed by client IP
func WithLimiter(l ratelimit.Limiter) PipelineOption {
	return func(pl *Pipeline) { pl.limiter = l }
}

func WithObserver(o Observer) PipelineOption {
	return func(pl *Pipeline) { pl.observer = o }
}

func WithLogger(l zerolog.Logger) PipelineOption {
	return func(pl *Pipeline) { pl.logger = l }
}

// WithLogging toggles persistence of log entries
func WithLogging(enabled bool) PipelineOption {
	return func(pl *Pipeline) { pl.logging = enabled }
}

// WithDebug exposes error details in 500 envelopes
func WithDebug(debug bool) PipelineOption {
	return func(pl *Pipeline) { pl.debug = debug }
}

// WithEventName sets the name of published events
func WithEventName(name string) PipelineOption {
	return func(pl *Pipeline) { pl.eventName = name }
}

func WithClock(now func() time.Time) PipelineOption {
	return func(pl *Pipeline) { pl.now = now }
}

func NewPipeline(drivers Resolver, logs UseCase, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		drivers:   drivers,
		logs:      logs,
		limiter:   ratelimit.Noop{},
		logger:    zerolog.Nop(),
		eventName: events.DefaultName,
		logging:   true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logs == nil {
		p.logging = false
	}
	return p
}

// tracked is the in-memory view of the entry, persisted only when logging is on
type tracked struct {
	id      int64
	stored  bool
	started time.Time
}

// Process runs the pipeline for req and always returns a well-formed outcome
func (p *Pipeline) Process(ctx context.Context, req *automation.Request) (out Outcome) {
	t := tracked{started: p.now()}
	logger := p.logger.With().Str("service", req.Service).Str("event", req.Event).Logger()

	defer func() {
		if p.observer != nil {
			p.observer.ObserveWebhook(ctx, req.Service, out.Status, p.now().Sub(t.started))
		}
	}()

	if !p.drivers.HasDriver(req.Service) {
		return notSupported(req.Service)
	}
	driver, err := p.drivers.Resolve(ctx, req.Service)
	if err != nil {
		if errors.Is(err, automation.ErrDriverNotFound) {
			return notSupported(req.Service)
		}
		logger.Error().Err(err).Msg("resolving driver")
		return p.processingFailed(req, err, p.elapsed(t))
	}

	if err := p.limiter.Allow(ctx, req.Service, req.IP); err != nil {
		var rl *automation.RateLimitError
		if errors.As(err, &rl) {
			return Outcome{Status: http.StatusTooManyRequests, Body: map[string]any{
				"error":   MsgRateLimitExceeded,
				"service": req.Service,
				"limit":   rl.Limit,
			}, Err: err}
		}
		logger.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
	}

	if p.logging {
		id, err := p.logs.Open(ctx, newEntry(req))
		if err != nil {
			logger.Error().Err(err).Msg("opening webhook log")
			return p.processingFailed(req, err, p.elapsed(t))
		}
		t.id, t.stored = id, true
	}
	defer func() { out.LogID = t.id }()

	if driver.SupportsIncomingWebhooks() {
		ok, err := verify(driver, req)
		if err != nil {
			p.fail(ctx, logger, &t, err.Error())
			return p.processingFailed(req, err, p.elapsed(t))
		}
		if !ok {
			rejected := &automation.VerificationError{Service: req.Service}
			p.fail(ctx, logger, &t, MsgInvalidSignature)
			logger.Warn().Err(rejected).Str("ip", req.IP).Msg("webhook signature rejected")
			return Outcome{Status: http.StatusUnauthorized, Body: map[string]any{"error": MsgInvalidSignature}, Err: rejected}
		}
	}

	response, err := handle(ctx, driver, req)
	if err != nil {
		p.fail(ctx, logger, &t, err.Error())
		logger.Error().Err(err).Msg("webhook processing failed")
		return p.processingFailed(req, err, p.elapsed(t))
	}

	if p.publisher != nil {
		e := events.New(p.eventName, req.Service, req.Event, rawPayload(req), response)
		if err := p.publisher.Publish(ctx, e); err != nil {
			logger.Warn().Err(err).Str("event_id", e.ID).Msg("publishing webhook event")
		}
	}

	elapsed := p.elapsed(t)
	if t.stored {
		if err := p.logs.Succeed(ctx, t.id, response, elapsed); err != nil {
			logger.Error().Err(err).Int64("log_id", t.id).Msg("closing webhook log")
		}
	}

	return Outcome{Status: http.StatusOK, Body: map[string]any{
		"success":            true,
		"service":            req.Service,
		"event":              nullable(req.Event),
		"response":           response,
		"processing_time_ms": Milliseconds(elapsed),
	}}
}

func (p *Pipeline) elapsed(t tracked) time.Duration {
	return p.now().Sub(t.started)
}

func (p *Pipeline) fail(ctx context.Context, logger zerolog.Logger, t *tracked, message string) {
	if !t.stored {
		return
	}
	if err := p.logs.Fail(ctx, t.id, message, p.elapsed(*t)); err != nil {
		logger.Error().Err(err).Int64("log_id", t.id).Msg("closing webhook log")
	}
}

func (p *Pipeline) processingFailed(req *automation.Request, err error, elapsed time.Duration) Outcome {
	message := MsgInternalError
	if p.debug {
		message = err.Error()
	}
	return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
		"error":              MsgProcessingFailed,
		"message":            message,
		"service":            req.Service,
		"event":              nullable(req.Event),
		"processing_time_ms": Milliseconds(elapsed),
	}, Err: err}
}

func notSupported(service string) Outcome {
	return Outcome{Status: http.StatusNotFound, Body: map[string]any{
		"error":   MsgServiceNotSupported,
		"service": service,
	}, Err: &automation.DriverNotFoundError{Driver: service}}
}

func verify(d automation.Driver, req *automation.Request) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("verifying webhook: %v", r)
		}
	}()
	return d.VerifyWebhook(req), nil
}

func handle(ctx context.Context, d automation.Driver, req *automation.Request) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return d.HandleWebhook(ctx, req)
}

func newEntry(req *automation.Request) Log {
	payload, err := json.Marshal(req.Payload())
	if err != nil {
		payload = json.RawMessage("{}")
	}
	return Log{
		Service:   req.Service,
		Event:     req.Event,
		Payload:   payload,
		Headers:   automation.SanitizeHeaders(req.Header),
		IPAddress: req.IP,
		UserAgent: req.UserAgent,
	}
}

// rawPayload is the inbound body when it is JSON, else its structured form
func rawPayload(req *automation.Request) json.RawMessage {
	if len(req.Body) > 0 && json.Valid(req.Body) {
		return json.RawMessage(req.Body)
	}
	b, err := json.Marshal(req.Payload())
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
