package repository

import (
	"context"
	"time"

	"github.com/bingitech/pressroom/internal/db"
	"github.com/bingitech/pressroom/internal/domain"
)

// CreateResult reports the outcome of a compare-and-create attempt.
type CreateResult struct {
	Draft   *domain.Draft
	Created bool // false when an existing record with the same id won
}

type DraftRepo interface {
	// CreateIfAbsent inserts the draft unless a record with the same id
	// already exists. The loser of a concurrent race observes the winner's
	// record, not an error; this holds across process restarts because the
	// decision lives in the database, not in a lock.
	CreateIfAbsent(ctx context.Context, d *domain.Draft) (*CreateResult, error)

	GetByID(ctx context.Context, id string) (*domain.Draft, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListByStatus(ctx context.Context, brandID string, status domain.DraftStatus) ([]*domain.Draft, error)
	ListByBrand(ctx context.Context, brandID string) ([]*domain.Draft, error)

	// SetReviewMsgID records the external review channel message id.
	SetReviewMsgID(ctx context.Context, id, msgID string) error

	// TransitionStatus atomically moves the draft from one status to another.
	// Returns ErrStaleTransition when the draft is no longer in `from`,
	// which is how duplicate triggers and races resolve to no-ops.
	TransitionStatus(ctx context.Context, id string, from, to domain.DraftStatus, detail *string, postID *string) error
}

type CostEntryRepo interface {
	// Append records an entry. Entries are never updated or deleted.
	Append(ctx context.Context, e *domain.CostEntry) error

	// AppendTx records an entry inside an existing transaction so draft
	// creation and cost emission commit or roll back as one unit.
	AppendTx(ctx context.Context, tx db.DBTX, e *domain.CostEntry) error

	GetByID(ctx context.Context, id string) (*domain.CostEntry, error)
	ListWindow(ctx context.Context, from, to time.Time) ([]*domain.CostEntry, error)
	ListByDraft(ctx context.Context, draftID string) ([]*domain.CostEntry, error)
}

// CreateDraftTx mirrors DraftRepo.CreateIfAbsent for use inside a
// transaction.
type DraftTxRepo interface {
	CreateIfAbsentTx(ctx context.Context, tx db.DBTX, d *domain.Draft) (*CreateResult, error)
}
