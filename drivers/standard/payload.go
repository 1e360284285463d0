package standard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/marcelsud/automation-connect/events"
)

// eventTypePattern: full-stop delimited segments of [a-zA-Z0-9_]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

// Payload is the Standard Webhooks envelope {type, timestamp, data}
type Payload struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func (p Payload) Validate() error {
	if p.Type == "" {
		return fmt.Errorf("type is required")
	}
	if !eventTypePattern.MatchString(p.Type) {
		return fmt.Errorf("type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", p.Type)
	}
	if p.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if len(p.Data) == 0 {
		return fmt.Errorf("data is required")
	}
	if !json.Valid(p.Data) {
		return fmt.Errorf("data must be valid JSON")
	}
	return nil
}

func (p Payload) MarshalJSON() ([]byte, error) {
	type alias Payload
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*alias
	}{
		Timestamp: p.Timestamp.UTC().Format(time.RFC3339Nano),
		alias:     (*alias)(&p),
	})
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	type alias Payload
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*alias
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Timestamp == "" {
		p.Timestamp = time.Time{}
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, aux.Timestamp)
	if err != nil {
		return fmt.Errorf("parsing timestamp: %w", err)
	}
	p.Timestamp = ts
	return nil
}

// NewPayload wraps data in a validated envelope stamped at now
func NewPayload(eventType string, data any, now time.Time) (Payload, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Payload{}, fmt.Errorf("marshaling data: %w", err)
	}
	p := Payload{Type: eventType, Timestamp: now.UTC(), Data: raw}
	if err := p.Validate(); err != nil {
		return Payload{}, fmt.Errorf("validating payload: %w", err)
	}
	return p, nil
}

// ParsePayload decodes and validates an inbound body
func ParsePayload(body []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Payload{}, fmt.Errorf("unmarshaling payload: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, fmt.Errorf("validating payload: %w", err)
	}
	return p, nil
}

// Matches reports whether the payload type passes the filter (exact, "*" or "prefix.*")
func (p Payload) Matches(eventTypes []string) bool {
	return events.MatchesEventType(p.Type, eventTypes)
}

// ValidateEventType checks a configured filter entry
func ValidateEventType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if eventType == "*" {
		return nil
	}
	base := eventType
	if len(base) > 2 && base[len(base)-2:] == ".*" {
		base = base[:len(base)-2]
	}
	if !eventTypePattern.MatchString(base) {
		return fmt.Errorf("event type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", eventType)
	}
	return nil
}
