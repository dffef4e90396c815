package service

import (
	"errors"
	"fmt"

	"github.com/bingitech/pressroom/internal/domain"
)

// ErrNotApproved is returned when a publish is attempted against a draft
// that is not in the approved status.
var ErrNotApproved = errors.New("draft is not approved for publishing")

// ErrNotFailed is returned when a resubmit targets a draft that is not in
// the failed status.
var ErrNotFailed = errors.New("only failed drafts can be resubmitted")

// ReviewError marks an inadmissible review decision, such as deciding a
// draft that already published. Callers log it and move on; a bad decision
// callback must never take the pipeline down.
type ReviewError struct {
	DraftID  string
	From     domain.DraftStatus
	Decision domain.ReviewDecision
}

func (e *ReviewError) Error() string {
	return fmt.Sprintf("decision %q is not admissible for draft %s in status %q",
		e.Decision, e.DraftID, e.From)
}
