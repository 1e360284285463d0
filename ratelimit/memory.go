package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/marcelsud/automation-connect/automation"
)

// Window is the length of one counting window
const Window = time.Minute

// Memory is an in-process fixed-window limiter with the same semantics as Redis:
// at most limit requests per key within each wall-clock minute
type Memory struct {
	policy Policy

	mu       sync.Mutex
	window   time.Time
	counters map[string]int
	now      func() time.Time
}

// NewMemory creates an in-process limiter
func NewMemory(policy Policy) *Memory {
	return &Memory{
		policy:   policy,
		counters: make(map[string]int),
		now:      time.Now,
	}
}

// Allow implements Limiter
func (m *Memory) Allow(_ context.Context, driver, identifier string) error {
	if !m.policy.Enabled {
		return nil
	}
	limit := m.policy.LimitFor(driver)
	key := Key(driver, identifier)
	window := m.now().Truncate(Window)

	m.mu.Lock()
	defer m.mu.Unlock()
	// counters only ever belong to the current window; a new window drops them all
	if !window.Equal(m.window) {
		m.window = window
		clear(m.counters)
	}
	if m.counters[key] >= limit {
		return &automation.RateLimitError{Driver: driver, Identifier: identifier, Limit: limit}
	}
	m.counters[key]++
	return nil
}

// keys is the number of counters held for the current window
func (m *Memory) keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counters)
}
