package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/platform"
	"github.com/bingitech/pressroom/internal/repository"
)

const (
	maxPublishAttempts      = 3
	defaultPublishBackoff   = 500 * time.Millisecond
	defaultReconcileTimeout = 10 * time.Second
	reconcilePolls          = 4
)

type publisher struct {
	drafts           repository.DraftRepo
	client           platform.Publisher
	observer         UseCaseObserver
	backoffBase      time.Duration
	reconcileTimeout time.Duration
}

type PublisherOption func(*publisher)

// WithPublishBackoffBase overrides the transient-retry backoff, mainly for
// tests.
func WithPublishBackoffBase(d time.Duration) PublisherOption {
	return func(p *publisher) { p.backoffBase = d }
}

// WithReconcileTimeout bounds how long an ambiguous outcome may spend in
// lookup before degrading to failed.
func WithReconcileTimeout(d time.Duration) PublisherOption {
	return func(p *publisher) { p.reconcileTimeout = d }
}

func WithPublisherObserver(obs UseCaseObserver) PublisherOption {
	return func(p *publisher) { p.observer = obs }
}

func NewPublisher(drafts repository.DraftRepo, client platform.Publisher, opts ...PublisherOption) Publisher {
	p := &publisher{
		drafts:           drafts,
		client:           client,
		observer:         NoopUseCaseObserver{},
		backoffBase:      defaultPublishBackoff,
		reconcileTimeout: defaultReconcileTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish posts one approved draft. At-most-once is enforced twice over:
// the status CAS stops concurrent publishers inside this system, and the
// idempotency key stops duplicates on the platform side when an ambiguous
// outcome is reconciled.
func (p *publisher) Publish(ctx context.Context, draftID string) (result *domain.Draft, err error) {
	start := time.Now()
	defer func() {
		fields := map[string]any{"draft_id": draftID}
		if result != nil {
			fields["status"] = string(result.Status)
		}
		observe(ctx, p.observer, "publish", start, err, fields)
	}()

	draft, err := p.drafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	switch draft.Status {
	case domain.DraftPublished:
		return draft, nil // duplicate trigger
	case domain.DraftApproved:
	default:
		return nil, fmt.Errorf("draft %s is %s: %w", draftID, draft.Status, ErrNotApproved)
	}

	key := draft.PublishIdempotencyKey()
	postID, postErr := p.postWithRetry(ctx, &platform.PostRequest{
		Body:           draft.Body,
		MediaRefs:      draft.MediaRefs,
		IdempotencyKey: key,
	})

	if postErr != nil {
		switch platform.ClassifyPublishError(postErr) {
		case platform.ErrKindAmbiguous:
			postID, postErr = p.reconcile(ctx, key)
			if postErr != nil {
				return p.markFailed(ctx, draftID, postErr)
			}
		default:
			return p.markFailed(ctx, draftID, postErr)
		}
	}

	return p.markPublished(ctx, draftID, postID)
}

func (p *publisher) Resubmit(ctx context.Context, draftID string) (err error) {
	start := time.Now()
	defer func() {
		observe(ctx, p.observer, "resubmit", start, err, map[string]any{"draft_id": draftID})
	}()

	err = p.drafts.TransitionStatus(ctx, draftID, domain.DraftFailed, domain.DraftApproved, nil, nil)
	if errors.Is(err, repository.ErrStaleTransition) {
		draft, gerr := p.drafts.GetByID(ctx, draftID)
		if gerr != nil {
			return gerr
		}
		err = fmt.Errorf("draft %s is %s: %w", draftID, draft.Status, ErrNotFailed)
	}
	return err
}

// postWithRetry retries only transient outcomes. Anything ambiguous or
// rejected surfaces immediately; re-posting either would risk duplicates or
// waste attempts on a definitive refusal.
func (p *publisher) postWithRetry(ctx context.Context, req *platform.PostRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxPublishAttempts; attempt++ {
		postID, err := p.client.Post(ctx, req)
		if err == nil {
			return postID, nil
		}
		lastErr = err
		if platform.ClassifyPublishError(err) != platform.ErrKindTransient {
			return "", err
		}
		if attempt == maxPublishAttempts {
			break
		}
		delay := p.backoffBase << (attempt - 1)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// reconcile asks the platform whether the ambiguous post actually landed,
// polling within a bounded window. An unresolved outcome returns an error
// so the draft degrades to failed, which is safe: resubmission reuses the
// same idempotency key, so the platform deduplicates if the post did land.
func (p *publisher) reconcile(ctx context.Context, key string) (string, error) {
	deadline := time.Now().Add(p.reconcileTimeout)
	interval := p.reconcileTimeout / reconcilePolls
	if interval <= 0 {
		interval = time.Millisecond
	}

	var lastErr error
	for {
		lookupCtx, cancel := context.WithDeadline(ctx, deadline)
		postID, err := p.client.LookupByIdempotencyKey(lookupCtx, key)
		cancel()

		switch {
		case err == nil:
			return postID, nil
		case errors.Is(err, platform.ErrPostNotFound):
			return "", fmt.Errorf("ambiguous publish did not land on platform: %w", err)
		default:
			lastErr = err
		}

		if time.Now().Add(interval).After(deadline) {
			return "", fmt.Errorf("could not reconcile ambiguous publish within %s: %w", p.reconcileTimeout, lastErr)
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (p *publisher) markPublished(ctx context.Context, draftID, postID string) (*domain.Draft, error) {
	err := p.drafts.TransitionStatus(ctx, draftID, domain.DraftApproved, domain.DraftPublished, nil, &postID)
	if errors.Is(err, repository.ErrStaleTransition) {
		// A concurrent publisher got there first. The platform-side
		// idempotency key guarantees both attempts refer to the same post.
		current, gerr := p.drafts.GetByID(ctx, draftID)
		if gerr != nil {
			return nil, gerr
		}
		if current.Status == domain.DraftPublished {
			return current, nil
		}
		return nil, fmt.Errorf("draft %s moved to %s during publish", draftID, current.Status)
	}
	if err != nil {
		return nil, err
	}
	return p.drafts.GetByID(ctx, draftID)
}

func (p *publisher) markFailed(ctx context.Context, draftID string, cause error) (*domain.Draft, error) {
	detail := cause.Error()
	err := p.drafts.TransitionStatus(ctx, draftID, domain.DraftApproved, domain.DraftFailed, &detail, nil)
	if err != nil && !errors.Is(err, repository.ErrStaleTransition) {
		return nil, fmt.Errorf("recording publish failure for draft %s: %v (publish error: %w)", draftID, err, cause)
	}
	draft, gerr := p.drafts.GetByID(ctx, draftID)
	if gerr != nil {
		return nil, gerr
	}
	return draft, fmt.Errorf("publishing draft %s: %w", draftID, cause)
}
