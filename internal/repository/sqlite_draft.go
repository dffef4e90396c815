package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bingitech/pressroom/internal/db"
	"github.com/bingitech/pressroom/internal/domain"
)

// ErrDraftNotFound is returned when no draft matches the requested id.
var ErrDraftNotFound = errors.New("draft not found")

// ErrStaleTransition is returned when a status transition's precondition no
// longer holds. Callers treat this as "someone else already moved the draft".
var ErrStaleTransition = errors.New("draft status changed since read")

// SQLiteDraftRepo implements DraftRepo using a SQLite database.
type SQLiteDraftRepo struct {
	db *sql.DB
}

// NewSQLiteDraftRepo creates a new SQLiteDraftRepo.
func NewSQLiteDraftRepo(database *sql.DB) *SQLiteDraftRepo {
	return &SQLiteDraftRepo{db: database}
}

const draftColumns = `id, brand_id, platform, pillar, body, media_refs, status,
	review_msg_id, external_post_id, error_detail, created_at, updated_at, published_at`

func (r *SQLiteDraftRepo) CreateIfAbsent(ctx context.Context, d *domain.Draft) (*CreateResult, error) {
	return r.createIfAbsent(ctx, r.db, d)
}

func (r *SQLiteDraftRepo) CreateIfAbsentTx(ctx context.Context, tx db.DBTX, d *domain.Draft) (*CreateResult, error) {
	return r.createIfAbsent(ctx, tx, d)
}

// createIfAbsent is the compare-and-create core. INSERT OR IGNORE resolves
// concurrent attempts on the same id to a single winner inside SQLite itself;
// the loser reads back the winner's record.
func (r *SQLiteDraftRepo) createIfAbsent(ctx context.Context, q db.DBTX, d *domain.Draft) (*CreateResult, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("validating draft: %w", err)
	}

	query := `INSERT OR IGNORE INTO drafts
		(id, brand_id, platform, pillar, body, media_refs, status,
		 review_msg_id, external_post_id, error_detail, created_at, updated_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query,
		d.ID,
		d.BrandID,
		d.Platform,
		d.Pillar,
		d.Body,
		mediaRefsToJSON(d.MediaRefs),
		string(d.Status),
		nullableStr(d.ReviewMsgID),
		nullableStr(d.ExternalPostID),
		nullableStr(d.ErrorDetail),
		d.CreatedAt.Format(time.RFC3339),
		d.UpdatedAt.Format(time.RFC3339),
		nullableTimeToString(d.PublishedAt, time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting draft: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking draft insert: %w", err)
	}
	if n > 0 {
		return &CreateResult{Draft: d, Created: true}, nil
	}

	existing, err := r.getByID(ctx, q, d.ID)
	if err != nil {
		return nil, fmt.Errorf("loading winning draft after insert conflict: %w", err)
	}
	return &CreateResult{Draft: existing, Created: false}, nil
}

func (r *SQLiteDraftRepo) GetByID(ctx context.Context, id string) (*domain.Draft, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *SQLiteDraftRepo) getByID(ctx context.Context, q db.DBTX, id string) (*domain.Draft, error) {
	row := q.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id)
	return scanDraftRow(row)
}

func (r *SQLiteDraftRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM drafts WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking draft existence: %w", err)
	}
	return true, nil
}

func (r *SQLiteDraftRepo) ListByStatus(ctx context.Context, brandID string, status domain.DraftStatus) ([]*domain.Draft, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE brand_id = ? AND status = ? ORDER BY created_at`,
		brandID, string(status))
	if err != nil {
		return nil, fmt.Errorf("listing drafts by status: %w", err)
	}
	defer rows.Close()
	return collectDrafts(rows)
}

func (r *SQLiteDraftRepo) ListByBrand(ctx context.Context, brandID string) ([]*domain.Draft, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE brand_id = ? ORDER BY created_at`, brandID)
	if err != nil {
		return nil, fmt.Errorf("listing drafts by brand: %w", err)
	}
	defer rows.Close()
	return collectDrafts(rows)
}

func (r *SQLiteDraftRepo) SetReviewMsgID(ctx context.Context, id, msgID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx,
		`UPDATE drafts SET review_msg_id = ?, updated_at = ? WHERE id = ?`,
		msgID, now, id)
	if err != nil {
		return fmt.Errorf("recording review message id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking review message update: %w", err)
	}
	if n == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func (r *SQLiteDraftRepo) TransitionStatus(ctx context.Context, id string, from, to domain.DraftStatus, detail *string, postID *string) error {
	now := time.Now().UTC()
	var publishedAt interface{}
	if to == domain.DraftPublished {
		publishedAt = now.Format(time.RFC3339)
	}

	// The WHERE status guard makes the transition a compare-and-swap:
	// duplicate triggers and racing writers see zero rows affected.
	res, err := r.db.ExecContext(ctx,
		`UPDATE drafts
		 SET status = ?, error_detail = ?, external_post_id = COALESCE(?, external_post_id),
		     published_at = COALESCE(?, published_at), updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(to), nullableStr(detail), nullableStr(postID),
		publishedAt, now.Format(time.RFC3339), id, string(from))
	if err != nil {
		return fmt.Errorf("transitioning draft %s to %s: %w", id, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking draft transition: %w", err)
	}
	if n == 0 {
		exists, existsErr := r.Exists(ctx, id)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return ErrDraftNotFound
		}
		return ErrStaleTransition
	}
	return nil
}

func collectDrafts(rows *sql.Rows) ([]*domain.Draft, error) {
	var drafts []*domain.Draft
	for rows.Next() {
		d, err := scanDraftRows(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drafts: %w", err)
	}
	return drafts, nil
}

func scanDraftRow(row *sql.Row) (*domain.Draft, error) {
	var d domain.Draft
	var mediaRefs, statusStr, createdAtStr, updatedAtStr string
	var reviewMsgID, externalPostID, errorDetail, publishedAtStr sql.NullString

	err := row.Scan(
		&d.ID, &d.BrandID, &d.Platform, &d.Pillar, &d.Body, &mediaRefs, &statusStr,
		&reviewMsgID, &externalPostID, &errorDetail,
		&createdAtStr, &updatedAtStr, &publishedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("scanning draft: %w", err)
	}
	return hydrateDraft(&d, mediaRefs, statusStr, createdAtStr, updatedAtStr,
		reviewMsgID, externalPostID, errorDetail, publishedAtStr)
}

func scanDraftRows(rows *sql.Rows) (*domain.Draft, error) {
	var d domain.Draft
	var mediaRefs, statusStr, createdAtStr, updatedAtStr string
	var reviewMsgID, externalPostID, errorDetail, publishedAtStr sql.NullString

	err := rows.Scan(
		&d.ID, &d.BrandID, &d.Platform, &d.Pillar, &d.Body, &mediaRefs, &statusStr,
		&reviewMsgID, &externalPostID, &errorDetail,
		&createdAtStr, &updatedAtStr, &publishedAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning draft row: %w", err)
	}
	return hydrateDraft(&d, mediaRefs, statusStr, createdAtStr, updatedAtStr,
		reviewMsgID, externalPostID, errorDetail, publishedAtStr)
}

func hydrateDraft(d *domain.Draft, mediaRefs, statusStr, createdAtStr, updatedAtStr string,
	reviewMsgID, externalPostID, errorDetail, publishedAtStr sql.NullString) (*domain.Draft, error) {

	d.MediaRefs = mediaRefsFromJSON(mediaRefs)
	d.Status = domain.DraftStatus(statusStr)
	d.ReviewMsgID = strPtr(reviewMsgID)
	d.ExternalPostID = strPtr(externalPostID)
	d.ErrorDetail = strPtr(errorDetail)

	var parseErr error
	d.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	d.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	d.PublishedAt = parseNullableTime(publishedAtStr, time.RFC3339)
	return d, nil
}
