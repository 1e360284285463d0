package automation

import (
	"errors"
	"fmt"
)

var (
	ErrDriverNotFound      = errors.New("driver not found")
	ErrDuplicateDriver     = errors.New("driver already registered")
	ErrConfiguration       = errors.New("driver configuration error")
	ErrWebhookVerification = errors.New("webhook verification failed")
	ErrServiceRequest      = errors.New("service request failed")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
	ErrUnsupportedAction   = errors.New("action not supported by driver")
)

// DriverNotFoundError names a driver that is unconfigured or has no factory
type DriverNotFoundError struct {
	Driver string
}

func (e *DriverNotFoundError) Error() string {
	return fmt.Sprintf("driver %s not found", e.Driver)
}

func (e *DriverNotFoundError) Is(target error) bool { return target == ErrDriverNotFound }

// ConfigurationError is returned at send time when a required key is absent
type ConfigurationError struct {
	Driver string
	Key    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration %s for driver %s", e.Key, e.Driver)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MissingConfig is a shorthand for drivers checking required keys
func MissingConfig(driver, key string) error {
	return &ConfigurationError{Driver: driver, Key: key}
}

// ServiceRequestError carries the downstream status and body of a failed vendor call
type ServiceRequestError struct {
	Status int
	Body   string
	URL    string
}

func (e *ServiceRequestError) Error() string {
	return fmt.Sprintf("http request failed with status %d: %s", e.Status, e.Body)
}

func (e *ServiceRequestError) Is(target error) bool { return target == ErrServiceRequest }

// VerificationError is the cause recorded for a rejected inbound signature
type VerificationError struct {
	Service string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("webhook verification failed for service %s", e.Service)
}

func (e *VerificationError) Is(target error) bool { return target == ErrWebhookVerification }

// RateLimitError reports the limit that was exceeded
type RateLimitError struct {
	Driver     string
	Identifier string
	Limit      int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for driver %s: limit %d requests per minute", e.Driver, e.Limit)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimitExceeded }
