package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all Rota tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id            TEXT PRIMARY KEY,
		status        TEXT NOT NULL DEFAULT 'SUBMITTING',
		phase         TEXT NOT NULL DEFAULT '',
		error_kind    TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		assigned      INTEGER NOT NULL DEFAULT 0,
		unassigned    INTEGER NOT NULL DEFAULT 0,
		dropped       INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		started_at    TEXT,
		finished_at   TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		job_id       TEXT NOT NULL,
		position     INTEGER NOT NULL,
		course       TEXT NOT NULL,
		section      TEXT NOT NULL,
		session_type TEXT NOT NULL,
		students     INTEGER NOT NULL,
		day          INTEGER NOT NULL,
		start_min    INTEGER NOT NULL,
		end_min      INTEGER NOT NULL,
		room         TEXT NOT NULL,
		instructor   TEXT NOT NULL,
		qualified    INTEGER NOT NULL,
		preferred    INTEGER NOT NULL,
		tier         TEXT NOT NULL,
		PRIMARY KEY (job_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS unassigned_sessions (
		job_id       TEXT NOT NULL,
		position     INTEGER NOT NULL,
		course       TEXT NOT NULL,
		section      TEXT NOT NULL,
		session_type TEXT NOT NULL,
		students     INTEGER NOT NULL,
		PRIMARY KEY (job_id, position)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_job_id ON assignments(job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_unassigned_job_id ON unassigned_sessions(job_id)`,
}

// migrate applies the schema to the database.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
