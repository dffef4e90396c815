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

// TextAgent generates platform copy through the text provider. Output that
// exceeds the platform's character limit fails the generation outright;
// silent truncation would ship content nobody reviewed.
type TextAgent struct {
	client      provider.TextGenerator
	cfg         provider.Config
	platform    string
	backoffBase time.Duration
}

// TextAgentOption customizes a TextAgent.
type TextAgentOption func(*TextAgent)

// WithTextBackoffBase overrides the retry backoff base, mainly for tests.
func WithTextBackoffBase(d time.Duration) TextAgentOption {
	return func(a *TextAgent) {
		a.backoffBase = d
	}
}

// NewTextAgent creates a TextAgent targeting the named platform.
func NewTextAgent(client provider.TextGenerator, cfg provider.Config, platform string, opts ...TextAgentOption) *TextAgent {
	a := &TextAgent{
		client:   client,
		cfg:      cfg,
		platform: platform,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *TextAgent) Kind() domain.AgentKind { return domain.AgentText }

func (a *TextAgent) DraftID(cfg *brand.Config, pillar, seed string) string {
	return domain.NewDraftID(cfg.BrandID, a.platform, pillar, seed)
}

func (a *TextAgent) Generate(ctx context.Context, cfg *brand.Config, pillar, seed string) (*Result, error) {
	platform, err := cfg.FindPlatform(a.platform)
	if err != nil {
		return nil, provider.NewGenerationError(provider.KindInvalidConfig, err)
	}
	if _, err := cfg.FindPillar(pillar); err != nil {
		return nil, provider.NewGenerationError(provider.KindInvalidConfig, err)
	}

	req := provider.TextRequest{
		SystemPrompt: buildVoicePrompt(cfg),
		UserPrompt:   buildPillarPrompt(cfg, platform, pillar),
		MaxTokens:    platform.MaxChars, // generous; the limit check below is authoritative
	}

	resp, err := withRetry(ctx, a.backoffBase, func() (*provider.TextResponse, error) {
		return a.client.Generate(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(resp.Text)
	if len([]rune(body)) > platform.MaxChars {
		return nil, provider.NewGenerationError(provider.KindInvalidConfig,
			fmt.Errorf("generated body is %d characters; platform %q allows %d (refusing to truncate)",
				len([]rune(body)), platform.Name, platform.MaxChars))
	}
	if body == "" {
		return nil, provider.NewGenerationError(provider.KindProviderError,
			fmt.Errorf("provider returned empty body"))
	}

	now := time.Now().UTC()
	draft := &domain.Draft{
		ID:        a.DraftID(cfg, pillar, seed),
		BrandID:   cfg.BrandID,
		Platform:  platform.Name,
		Pillar:    pillar,
		Body:      body,
		Status:    domain.DraftPendingReview,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return &Result{
		Draft: draft,
		Billing: Billing{
			Service:   "openai",
			Operation: "text_generation",
			Amount:    tokenCost(a.cfg.Pricing.TextPer1KTokens, resp.BilledTokens),
			Currency:  a.cfg.Pricing.Currency,
			UnitCount: resp.BilledTokens,
		},
	}, nil
}

// tokenCost computes exact spend for a token count billed per 1K tokens.
func tokenCost(per1K decimal.Decimal, tokens int) decimal.Decimal {
	return per1K.Mul(decimal.NewFromInt(int64(tokens))).Div(decimal.NewFromInt(1000))
}

// buildVoicePrompt renders the brand voice instructions from the config
// snapshot. The agent has no opinions of its own; everything flows from the
// versioned config.
func buildVoicePrompt(cfg *brand.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You write social media posts for the brand %q.\n", cfg.BrandID)
	fmt.Fprintf(&b, "Voice: %s.\n", cfg.Voice)
	if cfg.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", cfg.Tone)
	}
	b.WriteString("Write only the post body. No hashtag spam, no preamble, no quotes around the text.")
	return b.String()
}

func buildPillarPrompt(cfg *brand.Config, platform brand.Platform, pillar string) string {
	topic := strings.ReplaceAll(pillar, "_", " ")
	return fmt.Sprintf(
		"Write one %s post about %s. Hard limit: %d characters. Stay concrete and specific.",
		platform.Name, topic, platform.MaxChars)
}
