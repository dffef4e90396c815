package service

import (
	"context"

	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/repository"
)

type statusService struct {
	drafts repository.DraftRepo
}

func NewStatusService(drafts repository.DraftRepo) StatusService {
	return &statusService{drafts: drafts}
}

func (s *statusService) Overview(ctx context.Context, brandID string) (*StatusOverview, error) {
	drafts, err := s.drafts.ListByBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	overview := &StatusOverview{
		BrandID:  brandID,
		ByStatus: make(map[domain.DraftStatus][]*domain.Draft),
		Total:    len(drafts),
	}
	for _, d := range drafts {
		overview.ByStatus[d.Status] = append(overview.ByStatus[d.Status], d)
	}
	return overview, nil
}

func (s *statusService) ListByStatus(ctx context.Context, brandID string, status domain.DraftStatus) ([]*domain.Draft, error) {
	return s.drafts.ListByStatus(ctx, brandID, status)
}

func (s *statusService) ReviewQueue(ctx context.Context, brandID string) ([]*domain.Draft, error) {
	return s.drafts.ListByStatus(ctx, brandID, domain.DraftPendingReview)
}
