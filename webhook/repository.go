package webhook

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("webhook log not found")
	ErrNotProcessing = errors.New("webhook log is not processing")
)

// Reader provides read operations for webhook logs
type Reader interface {
	Get(ctx context.Context, id int64) (Log, error)
	/* Stats aggregates entries for service, or all entries when service is empty */
	Stats(ctx context.Context, service string) (Stats, error)
}

// Writer provides write operations for webhook logs
type Writer interface {
	/* Append stores a new entry and returns its monotonic id */
	Append(ctx context.Context, entry Log) (int64, error)
	/* Update applies a terminal transition
	 * Returns ErrNotProcessing when the entry already reached a terminal state
	 */
	Update(ctx context.Context, id int64, c Completion) error
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
