package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generation call. The orchestrator's retry
// policy keys off this: only RateLimited is retried.
type ErrorKind string

const (
	// KindRateLimited indicates the provider rejected the call due to rate
	// limits. Retryable with backoff.
	KindRateLimited ErrorKind = "rate_limited"

	// KindProviderError indicates the provider failed or was unreachable.
	// Surfaced as a run-level agent failure.
	KindProviderError ErrorKind = "provider_error"

	// KindInvalidConfig indicates the request itself was unacceptable.
	// Never retried.
	KindInvalidConfig ErrorKind = "invalid_config"
)

// GenerationError wraps a failed provider call with its classification.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError builds a classified generation error.
func NewGenerationError(kind ErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

// ClassifyError extracts the error kind, defaulting to ProviderError for
// unclassified failures so nothing escapes the taxonomy.
func ClassifyError(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return KindProviderError
}

// IsRetryable reports whether the error may be retried with backoff.
func IsRetryable(err error) bool {
	return ClassifyError(err) == KindRateLimited
}

// ErrTimeout indicates the provider request exceeded the configured timeout.
var ErrTimeout = errors.New("provider request timed out")
