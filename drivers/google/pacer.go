package google

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
)

const (
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 10
	DefaultBackoff           = 60 * time.Second
)

// Pacing bounds the request rate against the Google APIs
type Pacing struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// pacer is a client-side token bucket with a backoff window set by 429 responses
type pacer struct {
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
	now     func() time.Time
}

func newPacer(p Pacing) *pacer {
	rps := p.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	burst := p.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &pacer{limiter: rate.NewLimiter(rate.Limit(rps), burst), now: time.Now}
}

// Wait blocks until a call may be made or ctx ends
func (p *pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	delay := p.retryAt.Sub(p.now())
	p.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return p.limiter.Wait(ctx)
}

// Observe starts a backoff window when err is a 429 from the API
func (p *pacer) Observe(err error) {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusTooManyRequests {
		return
	}
	backoff := DefaultBackoff
	if s, convErr := strconv.Atoi(gerr.Header.Get("Retry-After")); convErr == nil && s > 0 {
		backoff = time.Duration(s) * time.Second
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.retryAt = p.now().Add(backoff)
}
