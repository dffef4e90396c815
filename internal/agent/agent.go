// Package agent holds the closed set of generation agents the orchestrator
// dispatches. Every agent implements one capability: turn a brand config
// pillar into a draft, reporting exactly what the call billed.
package agent

import (
	"context"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/shopspring/decimal"
)

// Billing describes what one successful generation call cost. The
// orchestrator persists it with the draft as a single atomic unit: either
// both records commit or neither does.
type Billing struct {
	Service   string
	Operation string
	Amount    decimal.Decimal
	Currency  string
	UnitCount int
}

// Result is a generated draft plus its billing record.
type Result struct {
	Draft   *domain.Draft
	Billing Billing
}

// Agent is the single capability interface the orchestrator dispatches
// through. The set of kinds is closed; adding a new agent means adding a
// variant, not touching dispatch logic.
type Agent interface {
	Kind() domain.AgentKind

	// DraftID computes the deterministic id Generate would assign for the
	// given inputs without calling any provider. The orchestrator uses it to
	// skip generation for drafts that already exist.
	DraftID(cfg *brand.Config, pillar, seed string) string

	Generate(ctx context.Context, cfg *brand.Config, pillar, seed string) (*Result, error)
}
