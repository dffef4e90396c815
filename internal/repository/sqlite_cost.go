package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bingitech/pressroom/internal/db"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrCostEntryNotFound is returned when no cost entry matches the requested id.
var ErrCostEntryNotFound = errors.New("cost entry not found")

// SQLiteCostEntryRepo implements CostEntryRepo using a SQLite database.
// Amounts are stored as their exact decimal string representation, never as
// REAL, so round-tripping loses no precision.
type SQLiteCostEntryRepo struct {
	db *sql.DB
}

// NewSQLiteCostEntryRepo creates a new SQLiteCostEntryRepo.
func NewSQLiteCostEntryRepo(database *sql.DB) *SQLiteCostEntryRepo {
	return &SQLiteCostEntryRepo{db: database}
}

const costColumns = `id, draft_id, service, operation, amount, currency, unit_count, timestamp`

// costTimeFormat is fixed-width (nanoseconds always padded to nine digits)
// so lexicographic order on the stored text matches chronological order.
// RFC3339Nano trims trailing fractional zeros, which breaks string-compared
// window bounds: "…T00:00:00.5Z" sorts before "…T00:00:00Z".
const costTimeFormat = "2006-01-02T15:04:05.000000000Z"

func (r *SQLiteCostEntryRepo) Append(ctx context.Context, e *domain.CostEntry) error {
	return r.appendTo(ctx, r.db, e)
}

func (r *SQLiteCostEntryRepo) AppendTx(ctx context.Context, tx db.DBTX, e *domain.CostEntry) error {
	return r.appendTo(ctx, tx, e)
}

func (r *SQLiteCostEntryRepo) appendTo(ctx context.Context, q db.DBTX, e *domain.CostEntry) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO cost_entries (`+costColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		nullableStr(e.DraftID),
		e.Service,
		e.Operation,
		e.Amount.String(),
		e.Currency,
		e.UnitCount,
		e.Timestamp.UTC().Format(costTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("appending cost entry: %w", err)
	}
	return nil
}

func (r *SQLiteCostEntryRepo) GetByID(ctx context.Context, id string) (*domain.CostEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+costColumns+` FROM cost_entries WHERE id = ?`, id)
	e, err := scanCostEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrCostEntryNotFound
	}
	return e, err
}

func (r *SQLiteCostEntryRepo) ListWindow(ctx context.Context, from, to time.Time) ([]*domain.CostEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+costColumns+` FROM cost_entries
		 WHERE timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp`,
		from.UTC().Format(costTimeFormat), to.UTC().Format(costTimeFormat))
	if err != nil {
		return nil, fmt.Errorf("listing cost entries: %w", err)
	}
	defer rows.Close()
	return collectCostEntries(rows)
}

func (r *SQLiteCostEntryRepo) ListByDraft(ctx context.Context, draftID string) ([]*domain.CostEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+costColumns+` FROM cost_entries WHERE draft_id = ? ORDER BY timestamp`, draftID)
	if err != nil {
		return nil, fmt.Errorf("listing cost entries by draft: %w", err)
	}
	defer rows.Close()
	return collectCostEntries(rows)
}

func collectCostEntries(rows *sql.Rows) ([]*domain.CostEntry, error) {
	var entries []*domain.CostEntry
	for rows.Next() {
		e, err := scanCostEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cost entries: %w", err)
	}
	return entries, nil
}

func scanCostEntry(scan func(...any) error) (*domain.CostEntry, error) {
	var e domain.CostEntry
	var draftID sql.NullString
	var amountStr, tsStr string

	err := scan(&e.ID, &draftID, &e.Service, &e.Operation, &amountStr, &e.Currency, &e.UnitCount, &tsStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning cost entry: %w", err)
	}

	e.DraftID = strPtr(draftID)
	e.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parsing cost amount %q: %w", amountStr, err)
	}
	e.Timestamp, err = time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return nil, fmt.Errorf("parsing cost timestamp: %w", err)
	}
	return &e, nil
}
