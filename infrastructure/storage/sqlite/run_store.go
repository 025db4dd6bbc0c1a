package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/felixgeelhaar/gridplan/domain/run"
)

// RunStore is a SQLite-backed run.Store. The full run is kept as JSON; the
// filterable fields are duplicated into columns.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens a database and wraps it as a run store.
func NewRunStore(cfg Config, opts ...Option) (*RunStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &RunStore{db: db}
	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewRunStoreFromDB creates a run store on an existing connection.
func NewRunStoreFromDB(db *sql.DB) (*RunStore, error) {
	s := &RunStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RunStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			algorithm TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			status TEXT NOT NULL,
			cached INTEGER NOT NULL,
			expanded INTEGER NOT NULL,
			data BLOB NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
		CREATE INDEX IF NOT EXISTS idx_runs_start_time ON runs(start_time);
		CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

// Save persists a new run.
func (s *RunStore) Save(ctx context.Context, r *run.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil || r.ID == "" {
		return run.ErrInvalidRunID
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	var endTime sql.NullInt64
	if !r.EndTime.IsZero() {
		endTime = sql.NullInt64{Int64: r.EndTime.UnixNano(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, algorithm, fingerprint, status, cached, expanded, data, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Algorithm), r.Fingerprint, string(r.Status), r.Cached, r.Result.Expanded,
		data, r.StartTime.UnixNano(), endTime,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return run.ErrRunExists
		}
		return err
	}
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(ctx context.Context, id string) (*run.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, run.ErrInvalidRunID
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM runs WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, run.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	var r run.Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns runs matching the filter ordered by start time.
func (s *RunStore) List(ctx context.Context, filter run.ListFilter) ([]*run.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	where, args := buildWhereClause(filter)
	query := "SELECT data FROM runs" + where

	order := "ASC"
	if filter.Descending {
		order = "DESC"
	}
	query += " ORDER BY start_time " + order + ", id " + order

	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	runs := []*run.Run{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r run.Run
		if err := json.Unmarshal(data, &r); err != nil {
			continue // Skip malformed entries
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// Count returns the number of runs matching the filter.
func (s *RunStore) Count(ctx context.Context, filter run.ListFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	where, args := buildWhereClause(filter)
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs"+where, args...).Scan(&count)
	return count, err
}

// Summary returns aggregate statistics.
func (s *RunStore) Summary(ctx context.Context, filter run.ListFilter) (run.Summary, error) {
	if err := ctx.Err(); err != nil {
		return run.Summary{}, err
	}

	where, args := buildWhereClause(filter)
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'solved' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'unsolved' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(cached), 0),
			COALESCE(AVG(CASE WHEN status IN ('solved', 'unsolved') THEN expanded END), 0)
		FROM runs` + where

	var summary run.Summary
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&summary.TotalRuns,
		&summary.SolvedRuns,
		&summary.UnsolvedRuns,
		&summary.FailedRuns,
		&summary.CachedRuns,
		&summary.AverageExpanded,
	)
	return summary, err
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

func buildWhereClause(filter run.ListFilter) (string, []any) {
	var conditions []string
	var args []any

	if len(filter.Status) > 0 {
		conditions = append(conditions, "status IN ("+placeholders(len(filter.Status))+")")
		for _, st := range filter.Status {
			args = append(args, string(st))
		}
	}
	if len(filter.Algorithms) > 0 {
		conditions = append(conditions, "algorithm IN ("+placeholders(len(filter.Algorithms))+")")
		for _, a := range filter.Algorithms {
			args = append(args, string(a))
		}
	}
	if filter.Fingerprint != "" {
		conditions = append(conditions, "fingerprint = ?")
		args = append(args, filter.Fingerprint)
	}
	if !filter.FromTime.IsZero() {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, filter.FromTime.UnixNano())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var (
	_ run.Store           = (*RunStore)(nil)
	_ run.SummaryProvider = (*RunStore)(nil)
)
