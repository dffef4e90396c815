package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Draft is a generated, not-yet-published piece of content. Drafts are
// created by generation agents, routed through the review gate, and finally
// handed to the publisher. Its ID is a deterministic content hash so that
// re-running generation for identical inputs resolves to the same record.
type Draft struct {
	ID             string
	BrandID        string
	Platform       string
	Pillar         string
	Body           string
	MediaRefs      []string
	Status         DraftStatus
	ReviewMsgID    *string
	ExternalPostID *string
	ErrorDetail    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PublishedAt    *time.Time
}

// NewDraftID derives the stable draft identifier from the generation inputs.
// Two runs over the same brand config version (same seed) yield the same id,
// which is the idempotency anchor for the whole pipeline. Each field is
// length-prefixed before hashing so a separator character inside one field
// can never shift the boundary into the next.
func NewDraftID(brandID, platform, pillar, seed string) string {
	h := sha256.New()
	for _, field := range []string{brandID, platform, pillar, seed} {
		fmt.Fprintf(h, "%d:", len(field))
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// PublishIdempotencyKey derives the token embedded in outbound platform posts.
// A retried publish for the same draft reuses the key, letting the platform
// (or our reconciliation query) deduplicate.
func (d *Draft) PublishIdempotencyKey() string {
	h := sha256.Sum256([]byte(d.ID + "|" + d.Platform))
	return hex.EncodeToString(h[:])[:24]
}

// CanTransition reports whether moving the draft to the target status is a
// legal lifecycle step.
func (d *Draft) CanTransition(target DraftStatus) bool {
	switch d.Status {
	case DraftPendingReview:
		return target == DraftApproved || target == DraftRejected
	case DraftApproved:
		return target == DraftPublished || target == DraftFailed
	case DraftFailed:
		// Operator resubmission only.
		return target == DraftApproved
	default:
		return false
	}
}

// Validate checks structural integrity before persistence.
func (d *Draft) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("draft id is required")
	}
	if d.BrandID == "" {
		return fmt.Errorf("draft brand id is required")
	}
	if d.Platform == "" {
		return fmt.Errorf("draft platform is required")
	}
	if d.Pillar == "" {
		return fmt.Errorf("draft pillar is required")
	}
	if d.Body == "" && len(d.MediaRefs) == 0 {
		return fmt.Errorf("draft must carry body text or media references")
	}
	return nil
}
