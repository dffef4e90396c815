package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/provider"
	"github.com/shopspring/decimal"
)

// VisualAgent generates brand imagery through the image provider. Drafts
// carry the provider's media reference only; binary media never enters the
// draft store.
type VisualAgent struct {
	client      provider.ImageGenerator
	cfg         provider.Config
	platform    string
	backoffBase time.Duration
}

// VisualAgentOption customizes a VisualAgent.
type VisualAgentOption func(*VisualAgent)

// WithVisualBackoffBase overrides the retry backoff base, mainly for tests.
func WithVisualBackoffBase(d time.Duration) VisualAgentOption {
	return func(a *VisualAgent) {
		a.backoffBase = d
	}
}

// NewVisualAgent creates a VisualAgent targeting the named platform.
func NewVisualAgent(client provider.ImageGenerator, cfg provider.Config, platform string, opts ...VisualAgentOption) *VisualAgent {
	a := &VisualAgent{
		client:   client,
		cfg:      cfg,
		platform: platform,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *VisualAgent) Kind() domain.AgentKind { return domain.AgentVisual }

// DraftID uses a distinct platform discriminator so a text draft and its
// companion visual never collide.
func (a *VisualAgent) DraftID(cfg *brand.Config, pillar, seed string) string {
	return domain.NewDraftID(cfg.BrandID, a.platform+"/visual", pillar, seed)
}

func (a *VisualAgent) Generate(ctx context.Context, cfg *brand.Config, pillar, seed string) (*Result, error) {
	platform, err := cfg.FindPlatform(a.platform)
	if err != nil {
		return nil, provider.NewGenerationError(provider.KindInvalidConfig, err)
	}
	if _, err := cfg.FindPillar(pillar); err != nil {
		return nil, provider.NewGenerationError(provider.KindInvalidConfig, err)
	}

	req := provider.ImageRequest{
		Prompt:     buildImagePrompt(cfg, pillar),
		StyleType:  "GENERAL",
		Resolution: "832x1248",
	}

	resp, err := withRetry(ctx, a.backoffBase, func() (*provider.ImageResponse, error) {
		return a.client.Generate(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	draft := &domain.Draft{
		ID:        a.DraftID(cfg, pillar, seed),
		BrandID:   cfg.BrandID,
		Platform:  platform.Name,
		Pillar:    pillar,
		Body:      captionFor(pillar),
		MediaRefs: []string{resp.MediaURL},
		Status:    domain.DraftPendingReview,
		CreatedAt: now,
		UpdatedAt: now,
	}

	units := resp.BilledUnits
	if units < 1 {
		units = 1
	}
	return &Result{
		Draft: draft,
		Billing: Billing{
			Service:   "ideogram",
			Operation: "image_generation_" + strings.ToLower(a.cfg.ImageRenderingSpeed),
			Amount:    a.cfg.ImageRate().Mul(decimal.NewFromInt(int64(units))),
			Currency:  a.cfg.Pricing.Currency,
			UnitCount: units,
		},
	}, nil
}

// buildImagePrompt renders an image prompt from the pillar and the brand's
// visual palette.
func buildImagePrompt(cfg *brand.Config, pillar string) string {
	topic := strings.ReplaceAll(pillar, "_", " ")
	var b strings.Builder
	fmt.Fprintf(&b, "Professional social media visual about %s for the brand %q.", topic, cfg.BrandID)
	if len(cfg.Palette) > 0 {
		fmt.Fprintf(&b, " Brand palette: %s.", strings.Join(cfg.Palette, ", "))
	}
	if cfg.Voice != "" {
		fmt.Fprintf(&b, " Mood: %s.", cfg.Voice)
	}
	b.WriteString(" Clean composition with negative space for copy.")
	return b.String()
}

func captionFor(pillar string) string {
	return strings.ReplaceAll(pillar, "_", " ")
}
