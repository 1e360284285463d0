package ratelimit

import (
	"context"
	"fmt"
)

// DefaultLimit is the per-minute limit for drivers without an override
const DefaultLimit = 60

// Policy holds the per-minute limits
type Policy struct {
	Enabled      bool           `yaml:"enabled"`
	DefaultLimit int            `yaml:"default_limit"`
	DriverLimits map[string]int `yaml:"driver_limits"`
}

// LimitFor returns the driver override, else the default
func (p Policy) LimitFor(driver string) int {
	if l, ok := p.DriverLimits[driver]; ok && l > 0 {
		return l
	}
	if p.DefaultLimit > 0 {
		return p.DefaultLimit
	}
	return DefaultLimit
}

// Validate rejects negative limits
func (p Policy) Validate() error {
	if p.DefaultLimit < 0 {
		return fmt.Errorf("default_limit cannot be negative")
	}
	for driver, l := range p.DriverLimits {
		if l < 0 {
			return fmt.Errorf("driver limit cannot be negative for driver %s", driver)
		}
	}
	return nil
}

// Limiter counts one request for (driver, identifier) and returns
// *automation.RateLimitError once the limit is exceeded
type Limiter interface {
	Allow(ctx context.Context, driver, identifier string) error
}

// Key is the counter key for a driver and identifier
func Key(driver, identifier string) string {
	return fmt.Sprintf("automation:rate_limit:%s:%s", driver, identifier)
}

// Noop never rejects; used when rate limiting is disabled
type Noop struct{}

func (Noop) Allow(context.Context, string, string) error { return nil }
