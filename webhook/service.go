package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

/* Service represents the business logic layer over the log store
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the log lifecycle used by the ingestion pipeline
type UseCase interface {
	Open(ctx context.Context, entry Log) (int64, error)
	Succeed(ctx context.Context, id int64, response any, elapsed time.Duration) error
	Fail(ctx context.Context, id int64, message string, elapsed time.Duration) error
	Stats(ctx context.Context, service string) (Stats, error)
}

type Service struct {
	Repo Repository
	now  func() time.Time
}

// NewService creates a new webhook log service with dependency injection
func NewService(repo Repository) *Service {
	return &Service{
		Repo: repo,
		now:  time.Now,
	}
}

// Open stores entry in processing state
func (s *Service) Open(ctx context.Context, entry Log) (int64, error) {
	now := s.now().UTC()
	entry.ID = 0
	entry.Status = Processing
	entry.ErrorMessage = ""
	entry.Response = nil
	entry.ProcessingTimeMs = nil
	entry.ProcessedAt = nil
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if len(entry.Payload) == 0 {
		entry.Payload = json.RawMessage("{}")
	}

	id, err := s.Repo.Append(ctx, entry)
	if err != nil {
		return 0, fmt.Errorf("storing webhook log: %w", err)
	}
	return id, nil
}

// Succeed moves the entry to success with the driver response
func (s *Service) Succeed(ctx context.Context, id int64, response any, elapsed time.Duration) error {
	return s.complete(ctx, id, Completion{
		Status:           Success,
		Response:         EncodeResponse(response),
		ProcessingTimeMs: Milliseconds(elapsed),
		ProcessedAt:      s.now().UTC(),
	})
}

// Fail moves the entry to failed with message
func (s *Service) Fail(ctx context.Context, id int64, message string, elapsed time.Duration) error {
	if message == "" {
		message = "unknown error"
	}
	return s.complete(ctx, id, Completion{
		Status:           Failed,
		ErrorMessage:     message,
		ProcessingTimeMs: Milliseconds(elapsed),
		ProcessedAt:      s.now().UTC(),
	})
}

func (s *Service) complete(ctx context.Context, id int64, c Completion) error {
	if err := c.Status.Validate(); err != nil {
		return fmt.Errorf("validating status: %w", err)
	}
	if err := s.Repo.Update(ctx, id, c); err != nil {
		return fmt.Errorf("updating webhook log %d: %w", id, err)
	}
	return nil
}

// Stats returns aggregates for service, or across all services when empty
func (s *Service) Stats(ctx context.Context, service string) (Stats, error) {
	st, err := s.Repo.Stats(ctx, service)
	if err != nil {
		return Stats{}, fmt.Errorf("loading webhook stats: %w", err)
	}
	st.Service = service
	return st, nil
}

// SuccessRate returns the success percentage for service
func (s *Service) SuccessRate(ctx context.Context, service string) (float64, error) {
	st, err := s.Stats(ctx, service)
	if err != nil {
		return 0, err
	}
	return st.SuccessRate(), nil
}

// AverageProcessingTime returns the mean processing time in milliseconds for service
func (s *Service) AverageProcessingTime(ctx context.Context, service string) (float64, error) {
	st, err := s.Stats(ctx, service)
	if err != nil {
		return 0, err
	}
	return st.AverageProcessingTime(), nil
}

// EncodeResponse marshals a driver response, falling back to its string form
func EncodeResponse(response any) json.RawMessage {
	if raw, ok := response.(json.RawMessage); ok && json.Valid(raw) {
		return raw
	}
	b, err := json.Marshal(response)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprintf("%v", response))
	}
	return b
}
