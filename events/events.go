package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is published once per successfully processed webhook
type Event struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Service    string          `json:"service"`
	Event      string          `json:"event,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Response   any             `json:"response"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// DefaultName is the event name published for received webhooks
const DefaultName = "automation.webhook.received"

// New builds an event with a fresh id
func New(name, service, event string, payload json.RawMessage, response any) Event {
	if name == "" {
		name = DefaultName
	}
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		Service:    service,
		Event:      event,
		Payload:    payload,
		Response:   response,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Filter selects events by service and event name.
// Empty fields match everything; Events entries may be exact, "*" or "prefix.*".
type Filter struct {
	Service string
	Events  []string
}

// Matches reports whether e passes the filter
func (f Filter) Matches(e Event) bool {
	if f.Service != "" && f.Service != "*" && f.Service != e.Service {
		return false
	}
	return MatchesEventType(e.Event, f.Events)
}

// MatchesEventType checks name against patterns; no patterns means accept all.
// "user.*" matches "user.created" but not "user" or "users.created".
func MatchesEventType(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if p == "*" || p == name {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, ".*"); ok && prefix != "" {
			if strings.HasPrefix(name, prefix+".") && len(name) > len(prefix)+1 {
				return true
			}
		}
	}
	return false
}

// Fanout publishes to every publisher and joins their errors
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
