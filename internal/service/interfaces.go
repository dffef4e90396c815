package service

import (
	"context"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/domain"
)

// PipelineRequest selects what one orchestrator run generates. Zero values
// mean "everything": all agents in dependency order, all configured pillars,
// seed defaulting to the config version so re-running the same version is a
// no-op.
type PipelineRequest struct {
	Kinds   []domain.AgentKind
	Pillars []string
	Seed    string
}

type Orchestrator interface {
	// RunPipeline executes the selected agents sequentially in dependency
	// order against one immutable config snapshot. Individual agent failures
	// produce a partial report, never a lost run.
	RunPipeline(ctx context.Context, cfg *brand.Config, req PipelineRequest) (*domain.RunReport, error)
}

type ReviewGate interface {
	// SubmitForReview posts the draft to the review channel and records the
	// resulting message id. Resubmitting a draft that already has one is a
	// no-op returning the existing id.
	SubmitForReview(ctx context.Context, cfg *brand.Config, draftID string) (string, error)

	// RecordDecision applies an approve/reject decision. Decisions are
	// idempotent under at-least-once delivery: repeating a decision that
	// already took effect returns nil.
	RecordDecision(ctx context.Context, draftID string, decision domain.ReviewDecision, reviewer string) error
}

type Publisher interface {
	// Publish posts an approved draft to the external platform exactly once.
	// Publishing a draft that is already published is a no-op.
	Publish(ctx context.Context, draftID string) (*domain.Draft, error)

	// Resubmit moves a failed draft back to approved so an operator can
	// retry it. Only failed drafts qualify.
	Resubmit(ctx context.Context, draftID string) error
}

// StatusOverview groups a brand's drafts by their current status.
type StatusOverview struct {
	BrandID  string
	ByStatus map[domain.DraftStatus][]*domain.Draft
	Total    int
}

type StatusService interface {
	Overview(ctx context.Context, brandID string) (*StatusOverview, error)
	ListByStatus(ctx context.Context, brandID string, status domain.DraftStatus) ([]*domain.Draft, error)
	ReviewQueue(ctx context.Context, brandID string) ([]*domain.Draft, error)
}
