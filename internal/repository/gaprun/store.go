// Package gaprun persists gap analysis runs in SQLite.
package gaprun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/kailas-cloud/simcheck/internal/domain"
	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
)

const schema = `CREATE TABLE IF NOT EXISTS gap_runs (
	id             TEXT PRIMARY KEY,
	variant        TEXT NOT NULL,
	status         TEXT NOT NULL,
	error          TEXT NOT NULL DEFAULT '',
	params         TEXT NOT NULL,
	combinations   INTEGER NOT NULL,
	analyzed       INTEGER NOT NULL,
	batches        INTEGER NOT NULL,
	batches_done   INTEGER NOT NULL,
	failed_batches TEXT NOT NULL,
	gaps           TEXT NOT NULL,
	stats          TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	finished_at    TEXT
);
CREATE INDEX IF NOT EXISTS idx_gap_runs_created ON gap_runs(created_at);`

// fixed width so that text order is time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed run store.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database at path (":memory:" for a private in-memory
// database) and creates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run store %s: %w", path, err)
	}
	// one connection: SQLite serializes writers, and ":memory:" is per connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create run store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

type runRow struct {
	ID            string         `db:"id"`
	Variant       string         `db:"variant"`
	Status        string         `db:"status"`
	Error         string         `db:"error"`
	Params        string         `db:"params"`
	Combinations  int            `db:"combinations"`
	Analyzed      int            `db:"analyzed"`
	Batches       int            `db:"batches"`
	BatchesDone   int            `db:"batches_done"`
	FailedBatches string         `db:"failed_batches"`
	Gaps          string         `db:"gaps"`
	Stats         string         `db:"stats"`
	CreatedAt     string         `db:"created_at"`
	UpdatedAt     string         `db:"updated_at"`
	FinishedAt    sql.NullString `db:"finished_at"`
}

// Create inserts a new run.
func (s *Store) Create(ctx context.Context, run *domgap.Run) error {
	row, err := toRow(run)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx, `INSERT INTO gap_runs
		(id, variant, status, error, params, combinations, analyzed, batches, batches_done,
		 failed_batches, gaps, stats, created_at, updated_at, finished_at)
		VALUES
		(:id, :variant, :status, :error, :params, :combinations, :analyzed, :batches, :batches_done,
		 :failed_batches, :gaps, :stats, :created_at, :updated_at, :finished_at)`, row)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Update overwrites the mutable state of an existing run.
func (s *Store) Update(ctx context.Context, run *domgap.Run) error {
	row, err := toRow(run)
	if err != nil {
		return err
	}
	res, err := s.db.NamedExecContext(ctx, `UPDATE gap_runs SET
		status = :status, error = :error, combinations = :combinations, analyzed = :analyzed,
		batches = :batches, batches_done = :batches_done, failed_batches = :failed_batches,
		gaps = :gaps, stats = :stats, updated_at = :updated_at, finished_at = :finished_at
		WHERE id = :id`, row)
	if err != nil {
		return fmt.Errorf("update run %s: %w", run.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run %s: %w", run.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRunNotFound, run.ID)
	}
	return nil
}

// Get loads a run by id.
func (s *Store) Get(ctx context.Context, id string) (*domgap.Run, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM gap_runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select run %s: %w", id, err)
	}
	return fromRow(&row)
}

// List returns runs newest first. limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]domgap.Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM gap_runs ORDER BY created_at DESC, id LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]domgap.Run, 0, len(rows))
	for i := range rows {
		run, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, nil
}

func toRow(run *domgap.Run) (*runRow, error) {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	failed, err := json.Marshal(nonNil(run.FailedBatches))
	if err != nil {
		return nil, fmt.Errorf("encode failed batches: %w", err)
	}
	gaps, err := json.Marshal(nonNil(run.Gaps))
	if err != nil {
		return nil, fmt.Errorf("encode gaps: %w", err)
	}
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}

	row := &runRow{
		ID:            run.ID,
		Variant:       string(run.Params.Variant),
		Status:        string(run.Status),
		Error:         run.Error,
		Params:        string(params),
		Combinations:  run.Combinations,
		Analyzed:      run.Analyzed,
		Batches:       run.Batches,
		BatchesDone:   run.BatchesDone,
		FailedBatches: string(failed),
		Gaps:          string(gaps),
		Stats:         string(stats),
		CreatedAt:     run.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:     run.UpdatedAt.UTC().Format(timeLayout),
	}
	if run.FinishedAt != nil {
		row.FinishedAt = sql.NullString{String: run.FinishedAt.UTC().Format(timeLayout), Valid: true}
	}
	return row, nil
}

func fromRow(row *runRow) (*domgap.Run, error) {
	run := &domgap.Run{
		ID:           row.ID,
		Status:       domgap.RunStatus(row.Status),
		Error:        row.Error,
		Combinations: row.Combinations,
		Analyzed:     row.Analyzed,
		Batches:      row.Batches,
		BatchesDone:  row.BatchesDone,
	}
	if err := json.Unmarshal([]byte(row.Params), &run.Params); err != nil {
		return nil, fmt.Errorf("decode params of run %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.FailedBatches), &run.FailedBatches); err != nil {
		return nil, fmt.Errorf("decode failed batches of run %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Gaps), &run.Gaps); err != nil {
		return nil, fmt.Errorf("decode gaps of run %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Stats), &run.Stats); err != nil {
		return nil, fmt.Errorf("decode stats of run %s: %w", row.ID, err)
	}

	var err error
	if run.CreatedAt, err = time.Parse(timeLayout, row.CreatedAt); err != nil {
		return nil, fmt.Errorf("decode created_at of run %s: %w", row.ID, err)
	}
	if run.UpdatedAt, err = time.Parse(timeLayout, row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at of run %s: %w", row.ID, err)
	}
	if row.FinishedAt.Valid {
		t, err := time.Parse(timeLayout, row.FinishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("decode finished_at of run %s: %w", row.ID, err)
		}
		run.FinishedAt = &t
	}
	return run, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
