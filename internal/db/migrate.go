package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// migrations are applied in order on every open. Statements must stay
// re-runnable: CREATE ... IF NOT EXISTS, plus tolerated ALTER TABLE retries.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS drafts (
		id               TEXT PRIMARY KEY,
		brand_id         TEXT NOT NULL,
		platform         TEXT NOT NULL,
		pillar           TEXT NOT NULL,
		body             TEXT NOT NULL DEFAULT '',
		media_refs       TEXT NOT NULL DEFAULT '[]',
		status           TEXT NOT NULL
		                 CHECK(status IN ('pending_review','approved','rejected','published','failed')),
		review_msg_id    TEXT,
		external_post_id TEXT,
		error_detail     TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		published_at     TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_drafts_brand ON drafts(brand_id)`,
	`CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status)`,

	`CREATE TABLE IF NOT EXISTS cost_entries (
		id         TEXT PRIMARY KEY,
		draft_id   TEXT,
		service    TEXT NOT NULL,
		operation  TEXT NOT NULL,
		amount     TEXT NOT NULL,
		currency   TEXT NOT NULL,
		unit_count INTEGER NOT NULL DEFAULT 0,
		timestamp  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_cost_entries_service_ts ON cost_entries(service, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_cost_entries_draft ON cost_entries(draft_id)`,

	// One generation cost entry per draft. The orchestrator inserts the draft
	// and its cost entry in one transaction; this index backstops the
	// exactly-once guarantee across concurrent runs.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_cost_entries_draft_op
		ON cost_entries(draft_id, operation) WHERE draft_id IS NOT NULL`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
