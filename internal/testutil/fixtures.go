package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var draftSeedCounter atomic.Int64

// Draft options
type DraftOption func(*domain.Draft)

func WithDraftStatus(s domain.DraftStatus) DraftOption {
	return func(d *domain.Draft) {
		d.Status = s
	}
}

func WithBody(body string) DraftOption {
	return func(d *domain.Draft) {
		d.Body = body
	}
}

func WithMediaRefs(refs ...string) DraftOption {
	return func(d *domain.Draft) {
		d.MediaRefs = refs
	}
}

func WithPlatform(platform string) DraftOption {
	return func(d *domain.Draft) {
		d.Platform = platform
		seed := fmt.Sprintf("fixture-%d", draftSeedCounter.Add(1))
		d.ID = domain.NewDraftID(d.BrandID, platform, d.Pillar, seed)
	}
}

// NewTestDraft builds a pending-review draft for the given pillar with a
// unique deterministic id.
func NewTestDraft(brandID, pillar string, opts ...DraftOption) *domain.Draft {
	now := time.Now().UTC()
	seed := fmt.Sprintf("fixture-%d", draftSeedCounter.Add(1))
	d := &domain.Draft{
		ID:        domain.NewDraftID(brandID, "micro-blog", pillar, seed),
		BrandID:   brandID,
		Platform:  "micro-blog",
		Pillar:    pillar,
		Body:      "Generated body for " + pillar,
		Status:    domain.DraftPendingReview,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CostEntry options
type CostOption func(*domain.CostEntry)

func WithAmount(s string) CostOption {
	return func(e *domain.CostEntry) {
		e.Amount = decimal.RequireFromString(s)
	}
}

func WithCurrency(c string) CostOption {
	return func(e *domain.CostEntry) {
		e.Currency = c
	}
}

func WithTimestamp(ts time.Time) CostOption {
	return func(e *domain.CostEntry) {
		e.Timestamp = ts
	}
}

func WithDraftID(id string) CostOption {
	return func(e *domain.CostEntry) {
		e.DraftID = &id
	}
}

// NewTestCostEntry builds a valid cost entry for the given service/operation.
func NewTestCostEntry(service, operation string, opts ...CostOption) *domain.CostEntry {
	e := &domain.CostEntry{
		ID:        uuid.New().String(),
		Service:   service,
		Operation: operation,
		Amount:    decimal.RequireFromString("0.32"),
		Currency:  "USD",
		UnitCount: 1,
		Timestamp: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewTestBrandConfig builds a minimal valid brand config snapshot.
func NewTestBrandConfig(version string) *brand.Config {
	return &brand.Config{
		BrandID: "bingitech",
		Version: version,
		Voice:   "confident, technical, warm",
		Tone:    "insightful",
		Palette: []string{"#009B3A", "#FED100", "#000000"},
		Pillars: []brand.Pillar{
			{Name: "technical_deep_dives", Weight: 40},
			{Name: "team_leadership_in_tech", Weight: 30},
		},
		Platforms: []brand.Platform{
			{Name: "micro-blog", MaxChars: 280, PostsPerWeek: 5},
			{Name: "professional", MaxChars: 3000, PostsPerWeek: 2},
		},
	}
}
