package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a request that cannot be processed as given.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCollectionNotFound signals a vector index collection that does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrInvalidSchema signals an invalid index definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrNotConfigured signals missing or placeholder configuration.
	ErrNotConfigured = errors.New("not configured")
	// ErrUpstream signals a failed call to an external service.
	ErrUpstream = errors.New("upstream call failed")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrRunNotFound signals an unknown gap analysis run.
	ErrRunNotFound = errors.New("gap run not found")
	// ErrRunFinished signals an operation on a run that is no longer running.
	ErrRunFinished = errors.New("gap run already finished")
)

// ConfigurationError reports a missing or placeholder setting.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s is required", ErrNotConfigured.Error(), e.Key)
	}
	return fmt.Sprintf("%s: %s %s", ErrNotConfigured.Error(), e.Key, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrNotConfigured }

// NewConfigurationError creates a configuration error for key.
func NewConfigurationError(key, reason string) error {
	return &ConfigurationError{Key: key, Reason: reason}
}

// UpstreamCallError is a non-2xx (or transport-level) failure of an external call.
// StatusCode is zero when no HTTP response was received.
type UpstreamCallError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamCallError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Service, ErrUpstream.Error())
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *UpstreamCallError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// NewUpstreamError creates an upstream call error.
func NewUpstreamError(service string, status int, body string, cause error) error {
	return &UpstreamCallError{Service: service, StatusCode: status, Body: body, Err: cause}
}

// DimensionMismatchError reports an embedding whose length differs from the index.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: index expects %d, got %d", ErrVectorDimMismatch.Error(), e.Expected, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrVectorDimMismatch }

// CheckDimensions returns a DimensionMismatchError when len(vec) != expected.
// A non-positive expected disables the check.
func CheckDimensions(vec []float32, expected int) error {
	if expected > 0 && len(vec) != expected {
		return &DimensionMismatchError{Expected: expected, Got: len(vec)}
	}
	return nil
}
