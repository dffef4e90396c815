package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// CostEntry is one billed AI operation. Entries are append-only: once
// recorded they are never mutated or deleted. Amount is an exact decimal so
// report sums stay drift-free across thousands of entries.
type CostEntry struct {
	ID        string
	DraftID   *string // set when the billing belongs to a draft's generation
	Service   string
	Operation string
	Amount    decimal.Decimal
	Currency  string
	UnitCount int
	Timestamp time.Time
}

// Validate rejects malformed entries at the ledger boundary. A missing cost
// entry for a billed call is a correctness bug, so the ledger never silently
// drops input; it refuses it loudly instead.
func (e *CostEntry) Validate() error {
	if e.Service == "" {
		return fmt.Errorf("cost entry service is required")
	}
	if e.Operation == "" {
		return fmt.Errorf("cost entry operation is required")
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("cost entry amount must not be negative, got %s", e.Amount)
	}
	if !currencyPattern.MatchString(e.Currency) {
		return fmt.Errorf("cost entry currency must be a 3-letter uppercase code, got %q", e.Currency)
	}
	if e.UnitCount < 0 {
		return fmt.Errorf("cost entry unit count must not be negative, got %d", e.UnitCount)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("cost entry timestamp is required")
	}
	return nil
}

// CostWindow is a half-open [From, To) reporting interval.
type CostWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether ts falls inside the window.
func (w CostWindow) Contains(ts time.Time) bool {
	return !ts.Before(w.From) && ts.Before(w.To)
}

// ServiceCost aggregates one service's spend in a single currency.
type ServiceCost struct {
	Service    string
	Currency   string
	Total      decimal.Decimal
	EntryCount int
	Operations []string // distinct operations observed, sorted
}

// CostReport is a pure aggregation over cost entries for a window, grouped
// by service and currency. It is derived, never stored.
type CostReport struct {
	Window     CostWindow
	Services   []ServiceCost
	EntryCount int
}

// Total sums the whole report in the given currency. It errors instead of
// silently mixing currencies: callers that want a single number must convert
// first.
func (r *CostReport) Total(currency string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, s := range r.Services {
		if s.Currency != currency {
			return decimal.Zero, fmt.Errorf(
				"report window contains %s entries; cannot sum as %s without conversion",
				s.Currency, currency)
		}
		total = total.Add(s.Total)
	}
	return total, nil
}

// Currencies returns the distinct currencies present in the report.
func (r *CostReport) Currencies() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range r.Services {
		if !seen[s.Currency] {
			seen[s.Currency] = true
			out = append(out, s.Currency)
		}
	}
	return out
}
