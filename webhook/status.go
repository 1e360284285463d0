package webhook

import "fmt"

/* Status represents the state of a webhook log entry
 * Follows the lifecycle: Processing -> Success/Failed, exactly once
 */
type Status int

const (
	Processing Status = iota + 1
	Success
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Processing:
		return "processing"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// NewStatus creates a Status from a string
func NewStatus(str string) Status {
	switch str {
	case "success":
		return Success
	case "failed":
		return Failed
	default:
		return Processing
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Processing || s > Failed {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	return s == Success || s == Failed
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	*s = NewStatus(string(b))
	return nil
}
