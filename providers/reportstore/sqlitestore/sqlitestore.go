// Package sqlitestore persists reports in a single SQLite file through
// database/sql and the mattn/go-sqlite3 driver. The full report is stored as
// JSON next to the columns List needs.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/providers/reportstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	run_id        TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL,
	passed        INTEGER NOT NULL,
	failed_stages TEXT NOT NULL,
	body          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_started_at ON reports (started_at DESC);
`

// timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a reportstore.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ reportstore.Store = (*Store)(nil)

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", path, err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	store := New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an already opened database. Call EnsureSchema before use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the reports table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlitestore: ensure schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts rep, replacing any report with the same run ID.
func (s *Store) Save(ctx context.Context, rep *report.Report) error {
	if err := reportstore.Check(rep); err != nil {
		return err
	}
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("sqlitestore: encode report: %w", err)
	}
	entry := reportstore.EntryOf(rep)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (run_id, started_at, finished_at, passed, failed_stages, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			passed = excluded.passed,
			failed_stages = excluded.failed_stages,
			body = excluded.body`,
		entry.RunID,
		formatTime(entry.StartedAt),
		formatTime(entry.FinishedAt),
		entry.Passed,
		strings.Join(entry.FailedStages, ","),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("sqlitestore: save %s: %w", rep.RunID, err)
	}
	return nil
}

// Load returns the report saved under runID.
func (s *Store) Load(ctx context.Context, runID string) (*report.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE run_id = ?`, runID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", reportstore.ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: load %s: %w", runID, err)
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(body), &rep); err != nil {
		return nil, fmt.Errorf("sqlitestore: decode report %s: %w", runID, err)
	}
	return &rep, nil
}

// List returns entries newest first, ties broken by run ID.
func (s *Store) List(ctx context.Context, limit int) ([]reportstore.Entry, error) {
	// a negative LIMIT means no limit in sqlite
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, passed, failed_stages
		FROM reports
		ORDER BY started_at DESC, run_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: list: %w", err)
	}
	defer rows.Close()

	var entries []reportstore.Entry
	for rows.Next() {
		var (
			entry                 reportstore.Entry
			startedAt, finishedAt string
			failedStages          string
		)
		if err := rows.Scan(&entry.RunID, &startedAt, &finishedAt, &entry.Passed, &failedStages); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan entry: %w", err)
		}
		if entry.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("sqlitestore: parse started_at of %s: %w", entry.RunID, err)
		}
		if entry.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
			return nil, fmt.Errorf("sqlitestore: parse finished_at of %s: %w", entry.RunID, err)
		}
		entry.FailedStages = []string{}
		if failedStages != "" {
			entry.FailedStages = strings.Split(failedStages, ",")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: list: %w", err)
	}
	return entries, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
