// Package reportstore defines persistence for finished EDA reports. Every
// Store satisfies pipeline.Sink, so a store can be handed straight to the
// orchestrator with pipeline.WithSink.
//
// Implementations:
//   - inmemory: process-local, for tests and one-shot CLI runs
//   - sqlitestore: a single-file SQLite database (mattn/go-sqlite3)
//   - pgstore: PostgreSQL through pgx
package reportstore

import (
	"context"
	"errors"
	"time"

	"github.com/leofalp/edaflow/core/report"
)

var (
	// ErrNotFound is returned by Load for an unknown run ID.
	ErrNotFound = errors.New("reportstore: report not found")

	// ErrInvalidReport is returned by Save for a nil report or one without
	// a run ID.
	ErrInvalidReport = errors.New("reportstore: report is nil or has no run id")
)

// Store persists reports keyed by run ID. Saving a run ID twice replaces the
// earlier report.
type Store interface {
	Save(ctx context.Context, rep *report.Report) error
	Load(ctx context.Context, runID string) (*report.Report, error)
	// List returns the newest reports first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]Entry, error)
}

// Entry is the listing view of a stored report.
type Entry struct {
	RunID        string    `json:"runId"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	Passed       bool      `json:"passed"`
	FailedStages []string  `json:"failedStages"`
}

// Check rejects reports that cannot be stored.
func Check(rep *report.Report) error {
	if rep == nil || rep.RunID == "" {
		return ErrInvalidReport
	}
	return nil
}

// EntryOf builds the listing entry of rep.
func EntryOf(rep *report.Report) Entry {
	failed := rep.Failed()
	stages := make([]string, len(failed))
	for i, stage := range failed {
		stages[i] = string(stage)
	}
	return Entry{
		RunID:        rep.RunID,
		StartedAt:    rep.StartedAt,
		FinishedAt:   rep.FinishedAt,
		Passed:       rep.Validation != nil && rep.Validation.Pass,
		FailedStages: stages,
	}
}
