package platform

import (
	"errors"
	"fmt"
)

// PublishErrorKind classifies a failed publish attempt. The classification
// decides what the publisher may do next: transient attempts can be retried,
// rejected attempts cannot, and ambiguous attempts must be reconciled before
// anything else happens.
type PublishErrorKind string

const (
	// ErrKindTransient covers failures where the platform definitely did not
	// accept the post (connection refused, 5xx before processing).
	ErrKindTransient PublishErrorKind = "transient"

	// ErrKindRejected covers definitive refusals (4xx validation errors).
	ErrKindRejected PublishErrorKind = "rejected"

	// ErrKindAmbiguous covers outcomes where the post may or may not have
	// landed (timeout after send, dropped connection mid-response).
	ErrKindAmbiguous PublishErrorKind = "ambiguous"
)

// PublishError wraps a platform failure with its classification.
type PublishError struct {
	Kind PublishErrorKind
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Kind, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

func NewPublishError(kind PublishErrorKind, err error) *PublishError {
	return &PublishError{Kind: kind, Err: err}
}

// ClassifyPublishError extracts the kind from err, defaulting to transient
// for unclassified failures since those are the ones safe to retry only when
// we know the request never landed; unknown errors from the HTTP layer before
// a response are exactly that case.
func ClassifyPublishError(err error) PublishErrorKind {
	var perr *PublishError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ErrKindTransient
}

// ErrPostNotFound is returned by idempotency-key lookup when no post with
// the key exists on the platform.
var ErrPostNotFound = errors.New("no post found for idempotency key")
