package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/rota/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Job CRUD ---

func (s *SQLiteStore) CreateJob(ctx context.Context, job *model.Job) error {
	s.logger.Debug("sql", "op", "insert", "table", "jobs", "id", job.ID)

	startedAt := formatTimePtr(job.StartedAt)
	finishedAt := formatTimePtr(job.FinishedAt)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, phase, error_kind, error_message, assigned, unassigned, dropped, created_at, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, string(job.Status), string(job.Phase),
		string(job.ErrorKind), job.ErrorMessage,
		job.Assigned, job.Unassigned, job.Dropped,
		job.CreatedAt.Format(time.RFC3339Nano), startedAt, finishedAt,
	)
	return err
}

func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	s.logger.Debug("sql", "op", "select", "table", "jobs", "id", id)
	return s.scanJob(s.db.QueryRowContext(ctx,
		`SELECT id, status, phase, error_kind, error_message, assigned, unassigned, dropped, created_at, started_at, finished_at
		 FROM jobs WHERE id = ?`, id))
}

func (s *SQLiteStore) ListJobs(ctx context.Context, opts model.ListOptions) ([]*model.Job, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "jobs", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	// Build WHERE clause based on filters.
	var whereClauses []string
	var countArgs []any

	if opts.Status != "" {
		whereClauses = append(whereClauses, "status = ?")
		countArgs = append(countArgs, opts.Status)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM jobs` + whereSQL
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT id, status, phase, error_kind, error_message, assigned, unassigned, dropped, created_at, started_at, finished_at
		FROM jobs` + whereSQL + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	listArgs := append(countArgs, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := s.scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, job *model.Job) error {
	s.logger.Debug("sql", "op", "update", "table", "jobs", "id", job.ID)

	startedAt := formatTimePtr(job.StartedAt)
	finishedAt := formatTimePtr(job.FinishedAt)

	result, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status=?, phase=?, error_kind=?, error_message=?,
		 assigned=?, unassigned=?, dropped=?, started_at=?, finished_at=? WHERE id=?`,
		string(job.Status), string(job.Phase),
		string(job.ErrorKind), job.ErrorMessage,
		job.Assigned, job.Unassigned, job.Dropped,
		startedAt, finishedAt, job.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("job %s not found", job.ID)
	}
	return nil
}

// --- Result storage ---

// ReplaceResult deletes any previous result rows for the job and inserts
// the new ones in a single transaction.
func (s *SQLiteStore) ReplaceResult(ctx context.Context, jobID string, records []model.ClassifiedRecord, unassigned []model.UnassignedSession) error {
	s.logger.Debug("sql", "op", "replace_result", "job_id", jobID,
		"assignments", len(records), "unassigned", len(unassigned))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE job_id = ?`, jobID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM unassigned_sessions WHERE job_id = ?`, jobID); err != nil {
		return err
	}

	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO assignments (job_id, position, course, section, session_type, students,
			 day, start_min, end_min, room, instructor, qualified, preferred, tier)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			jobID, rec.Position, rec.Course, rec.Section, rec.SessionType, rec.Students,
			int(rec.Day), rec.StartMin, rec.EndMin, rec.Room, rec.Instructor,
			boolToInt(rec.InstructorQualified), boolToInt(rec.TimeslotPreferred), string(rec.Tier),
		)
		if err != nil {
			return fmt.Errorf("insert assignment %d: %w", rec.Position, err)
		}
	}

	for i, u := range unassigned {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO unassigned_sessions (job_id, position, course, section, session_type, students)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			jobID, i, u.Course, u.Section, u.SessionType, u.Students,
		)
		if err != nil {
			return fmt.Errorf("insert unassigned %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetResult returns the stored classified records and unassigned sessions
// for a job, in canonical order.
func (s *SQLiteStore) GetResult(ctx context.Context, jobID string) ([]model.ClassifiedRecord, []model.UnassignedSession, error) {
	s.logger.Debug("sql", "op", "select_result", "job_id", jobID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, course, section, session_type, students,
		 day, start_min, end_min, room, instructor, qualified, preferred, tier
		 FROM assignments WHERE job_id = ? ORDER BY position`, jobID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var records []model.ClassifiedRecord
	for rows.Next() {
		var rec model.ClassifiedRecord
		var day, qualified, preferred int
		var tier string

		if err := rows.Scan(&rec.Position, &rec.Course, &rec.Section, &rec.SessionType, &rec.Students,
			&day, &rec.StartMin, &rec.EndMin, &rec.Room, &rec.Instructor,
			&qualified, &preferred, &tier); err != nil {
			return nil, nil, err
		}
		rec.Day = model.Weekday(day)
		rec.InstructorQualified = qualified != 0
		rec.TimeslotPreferred = preferred != 0
		rec.Tier = model.Tier(tier)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	urows, err := s.db.QueryContext(ctx,
		`SELECT course, section, session_type, students
		 FROM unassigned_sessions WHERE job_id = ? ORDER BY position`, jobID)
	if err != nil {
		return nil, nil, err
	}
	defer urows.Close()

	var unassigned []model.UnassignedSession
	for urows.Next() {
		var u model.UnassignedSession
		if err := urows.Scan(&u.Course, &u.Section, &u.SessionType, &u.Students); err != nil {
			return nil, nil, err
		}
		unassigned = append(unassigned, u)
	}
	return records, unassigned, urows.Err()
}

// --- scan helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanJob(row scanner) (*model.Job, error) {
	var job model.Job
	var status, phase, errorKind, createdAt string
	var startedAt, finishedAt *string

	err := row.Scan(
		&job.ID, &status, &phase, &errorKind, &job.ErrorMessage,
		&job.Assigned, &job.Unassigned, &job.Dropped,
		&createdAt, &startedAt, &finishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	job.Status = model.JobStatus(status)
	job.Phase = model.JobPhase(phase)
	job.ErrorKind = model.ErrorKind(errorKind)
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if startedAt != nil {
		t, _ := time.Parse(time.RFC3339Nano, *startedAt)
		job.StartedAt = &t
	}
	if finishedAt != nil {
		t, _ := time.Parse(time.RFC3339Nano, *finishedAt)
		job.FinishedAt = &t
	}

	return &job, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339Nano)
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
