package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/repository"
)

// ReviewNotifier posts a draft to the external review channel and returns
// the channel's message id. notify.Client satisfies this.
type ReviewNotifier interface {
	SubmitDraft(ctx context.Context, cfg *brand.Config, draft *domain.Draft) (string, error)
}

type reviewGate struct {
	drafts   repository.DraftRepo
	notifier ReviewNotifier
	observer UseCaseObserver
}

func NewReviewGate(drafts repository.DraftRepo, notifier ReviewNotifier, observers ...UseCaseObserver) ReviewGate {
	return &reviewGate{
		drafts:   drafts,
		notifier: notifier,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (g *reviewGate) SubmitForReview(ctx context.Context, cfg *brand.Config, draftID string) (msgID string, err error) {
	start := time.Now()
	defer func() {
		observe(ctx, g.observer, "submit_for_review", start, err, map[string]any{"draft_id": draftID})
	}()

	draft, err := g.drafts.GetByID(ctx, draftID)
	if err != nil {
		return "", err
	}
	if draft.Status != domain.DraftPendingReview {
		return "", &ReviewError{DraftID: draftID, From: draft.Status, Decision: "submit"}
	}
	if draft.ReviewMsgID != nil {
		return *draft.ReviewMsgID, nil
	}

	msgID, err = g.notifier.SubmitDraft(ctx, cfg, draft)
	if err != nil {
		return "", fmt.Errorf("submitting draft %s for review: %w", draftID, err)
	}
	if err := g.drafts.SetReviewMsgID(ctx, draftID, msgID); err != nil {
		return "", fmt.Errorf("recording review message id for draft %s: %w", draftID, err)
	}
	return msgID, nil
}

// RecordDecision applies an approve/reject decision with at-least-once
// delivery semantics: a decision that already took effect is a clean no-op,
// a decision that conflicts with the draft's current state is a ReviewError.
func (g *reviewGate) RecordDecision(ctx context.Context, draftID string, decision domain.ReviewDecision, reviewer string) (err error) {
	start := time.Now()
	defer func() {
		observe(ctx, g.observer, "record_decision", start, err, map[string]any{
			"draft_id": draftID,
			"decision": string(decision),
			"reviewer": reviewer,
		})
	}()

	target, derr := decisionTarget(decision)
	if derr != nil {
		err = derr
		return err
	}

	draft, gerr := g.drafts.GetByID(ctx, draftID)
	if gerr != nil {
		err = gerr
		return err
	}
	if draft.Status == target {
		return nil // duplicate delivery of the same decision
	}
	// The gate only decides pending drafts. failed -> approved exists in the
	// lifecycle but belongs to operator resubmission, not review callbacks.
	if draft.Status != domain.DraftPendingReview || !draft.CanTransition(target) {
		err = &ReviewError{DraftID: draftID, From: draft.Status, Decision: decision}
		return err
	}

	terr := g.drafts.TransitionStatus(ctx, draftID, domain.DraftPendingReview, target, nil, nil)
	if errors.Is(terr, repository.ErrStaleTransition) {
		// Raced with another decision. Re-read: the same decision landing
		// twice is fine, a conflicting one is not.
		current, gerr := g.drafts.GetByID(ctx, draftID)
		if gerr != nil {
			err = gerr
			return err
		}
		if current.Status == target {
			return nil
		}
		err = &ReviewError{DraftID: draftID, From: current.Status, Decision: decision}
		return err
	}
	err = terr
	return err
}

func decisionTarget(decision domain.ReviewDecision) (domain.DraftStatus, error) {
	switch decision {
	case domain.DecisionApprove:
		return domain.DraftApproved, nil
	case domain.DecisionReject:
		return domain.DraftRejected, nil
	default:
		return "", fmt.Errorf("unknown review decision %q", decision)
	}
}
