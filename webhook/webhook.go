package webhook

import (
	"encoding/json"
	"math"
	"time"
)

/* Log is the audit record of one inbound webhook attempt
 * Uses value semantics as it represents data, not behavior
 */
type Log struct {
	ID               int64             `json:"id"`
	Service          string            `json:"service"`
	Event            string            `json:"event,omitempty"`
	Payload          json.RawMessage   `json:"payload"`
	Headers          map[string]string `json:"headers,omitempty"`
	IPAddress        string            `json:"ip_address,omitempty"`
	UserAgent        string            `json:"user_agent,omitempty"`
	Status           Status            `json:"status"`
	ErrorMessage     string            `json:"error_message,omitempty"`
	Response         json.RawMessage   `json:"response,omitempty"`
	ProcessingTimeMs *float64          `json:"processing_time_ms,omitempty"`
	ProcessedAt      *time.Time        `json:"processed_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Completion is the terminal transition applied to a processing entry
type Completion struct {
	Status           Status
	ErrorMessage     string
	Response         json.RawMessage
	ProcessingTimeMs float64
	ProcessedAt      time.Time
}

// Apply returns l moved to the terminal state described by c
func (c Completion) Apply(l Log) Log {
	ms := c.ProcessingTimeMs
	at := c.ProcessedAt
	l.Status = c.Status
	l.ErrorMessage = c.ErrorMessage
	l.Response = c.Response
	l.ProcessingTimeMs = &ms
	l.ProcessedAt = &at
	l.UpdatedAt = at
	return l
}

/* Stats aggregates log entries, optionally scoped to one service
 * Timed counts entries with a processing time set
 */
type Stats struct {
	Service           string  `json:"service,omitempty"`
	Total             int64   `json:"total"`
	Successful        int64   `json:"successful"`
	Failed            int64   `json:"failed"`
	Processing        int64   `json:"processing"`
	Timed             int64   `json:"-"`
	TotalProcessingMs float64 `json:"-"`
}

// SuccessRate is successful/total*100 rounded to 2 decimals, 0 when empty
func (s Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return Round2(float64(s.Successful) / float64(s.Total) * 100)
}

// AverageProcessingTime in milliseconds over timed entries, 0 when none
func (s Stats) AverageProcessingTime() float64 {
	if s.Timed == 0 {
		return 0
	}
	return Round2(s.TotalProcessingMs / float64(s.Timed))
}

// Add accumulates one entry
func (s *Stats) Add(l Log) {
	s.Total++
	switch l.Status {
	case Success:
		s.Successful++
	case Failed:
		s.Failed++
	case Processing:
		s.Processing++
	}
	if l.ProcessingTimeMs != nil {
		s.Timed++
		s.TotalProcessingMs += *l.ProcessingTimeMs
	}
}

// Round2 rounds to two decimal places
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Milliseconds converts d to fractional milliseconds rounded to 2 decimals
func Milliseconds(d time.Duration) float64 {
	if d < 0 {
		d = 0
	}
	return Round2(float64(d) / float64(time.Millisecond))
}
