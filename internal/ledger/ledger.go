// Package ledger owns the append-only record of billed AI operations and
// the pure aggregations derived from it. Amounts are exact decimals end to
// end; no float ever touches a money path.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerError marks malformed input rejected at the ledger boundary.
// Entries are never silently dropped: a missing cost entry for a billed call
// is a correctness bug, not an acceptable loss.
type LedgerError struct {
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger rejected entry: %v", e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }

// Ledger records billed operations and derives cost reports.
type Ledger interface {
	// Record appends an entry, assigning an id when absent. Fails only on
	// malformed input.
	Record(ctx context.Context, e *domain.CostEntry) (string, error)

	// Report aggregates entries whose timestamp falls in the window,
	// grouped by service and currency. Pure read.
	Report(ctx context.Context, window domain.CostWindow) (*domain.CostReport, error)
}

type costLedger struct {
	entries repository.CostEntryRepo
}

// New creates a Ledger backed by the given repository. The ledger is an
// injected dependency with an explicit lifecycle, not process-wide state.
func New(entries repository.CostEntryRepo) Ledger {
	return &costLedger{entries: entries}
}

func (l *costLedger) Record(ctx context.Context, e *domain.CostEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := e.Validate(); err != nil {
		return "", &LedgerError{Err: err}
	}
	if err := l.entries.Append(ctx, e); err != nil {
		return "", err
	}
	return e.ID, nil
}

func (l *costLedger) Report(ctx context.Context, window domain.CostWindow) (*domain.CostReport, error) {
	if !window.To.After(window.From) {
		return nil, &LedgerError{Err: fmt.Errorf("report window end must be after start")}
	}

	entries, err := l.entries.ListWindow(ctx, window.From, window.To)
	if err != nil {
		return nil, err
	}
	return Aggregate(window, entries), nil
}

// Aggregate folds entries into a report. Exposed for reuse by tests and the
// notification renderer; it performs no IO.
func Aggregate(window domain.CostWindow, entries []*domain.CostEntry) *domain.CostReport {
	type key struct {
		service  string
		currency string
	}
	sums := map[key]*domain.ServiceCost{}
	ops := map[key]map[string]bool{}

	for _, e := range entries {
		k := key{service: e.Service, currency: e.Currency}
		sc, ok := sums[k]
		if !ok {
			sc = &domain.ServiceCost{
				Service:  e.Service,
				Currency: e.Currency,
				Total:    decimal.Zero,
			}
			sums[k] = sc
			ops[k] = map[string]bool{}
		}
		sc.Total = sc.Total.Add(e.Amount)
		sc.EntryCount++
		ops[k][e.Operation] = true
	}

	report := &domain.CostReport{
		Window:     window,
		EntryCount: len(entries),
	}
	for k, sc := range sums {
		for op := range ops[k] {
			sc.Operations = append(sc.Operations, op)
		}
		sort.Strings(sc.Operations)
		report.Services = append(report.Services, *sc)
	}
	sort.Slice(report.Services, func(i, j int) bool {
		if report.Services[i].Service != report.Services[j].Service {
			return report.Services[i].Service < report.Services[j].Service
		}
		return report.Services[i].Currency < report.Services[j].Currency
	})
	return report
}

// DayWindow returns the UTC calendar-day window containing ts.
func DayWindow(ts time.Time) domain.CostWindow {
	start := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	return domain.CostWindow{From: start, To: start.AddDate(0, 0, 1)}
}

// TrailingWindow returns the window covering the past n days up to now.
func TrailingWindow(now time.Time, days int) domain.CostWindow {
	return domain.CostWindow{From: now.AddDate(0, 0, -days), To: now}
}
