package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/core/stats"
	"github.com/leofalp/edaflow/core/validation"
	"github.com/leofalp/edaflow/providers/reportstore"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(runID string, startedAt time.Time, narrativeStatus report.StageStatus) *report.Report {
	return &report.Report{
		RunID:      runID,
		Validation: &validation.Result{RowCount: 4, ColumnCount: 2, Pass: true},
		Statistics: &stats.Summary{Correlation: stats.CorrelationMatrix{
			Columns: []string{"a", "b"},
			Values: [][]stats.Number{
				{stats.Defined(1), stats.Undefined()},
				{stats.Undefined(), stats.Defined(1)},
			},
		}},
		StageStatus: report.StageStatuses{
			Validation:    report.StatusSucceeded,
			Statistics:    report.StatusSucceeded,
			Visualization: report.StatusSucceeded,
			Narrative:     narrativeStatus,
		},
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(2 * time.Second),
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	startedAt := time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)

	if err := store.Save(ctx, sampleReport("run-1", startedAt, report.StatusSucceeded)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(ctx, "run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Validation == nil || loaded.Validation.RowCount != 4 {
		t.Errorf("validation lost: %+v", loaded.Validation)
	}
	entry := loaded.Statistics.Correlation.Values[0][1]
	if entry.Defined {
		t.Error("undefined correlation must survive storage")
	}
	if !loaded.StartedAt.Equal(startedAt) {
		t.Errorf("StartedAt = %v, want %v", loaded.StartedAt, startedAt)
	}
}

func TestStore_LoadUnknown(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, reportstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(context.Background(), nil); !errors.Is(err, reportstore.ErrInvalidReport) {
		t.Errorf("expected ErrInvalidReport, got %v", err)
	}
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	startedAt := time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)

	if err := store.Save(ctx, sampleReport("run-1", startedAt, report.StatusSucceeded)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(ctx, sampleReport("run-1", startedAt, report.StatusFailed)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if len(entries[0].FailedStages) != 1 || entries[0].FailedStages[0] != "narrative" {
		t.Errorf("FailedStages = %v", entries[0].FailedStages)
	}
}

func TestStore_ListOrderAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	for i, runID := range []string{"run-a", "run-b", "run-c"} {
		if err := store.Save(ctx, sampleReport(runID, base.Add(time.Duration(i)*time.Hour), report.StatusSucceeded)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 || entries[0].RunID != "run-c" || entries[2].RunID != "run-a" {
		t.Errorf("entries = %+v", entries)
	}
	if !entries[0].Passed || len(entries[0].FailedStages) != 0 {
		t.Errorf("entry = %+v", entries[0])
	}
	if !entries[2].StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", entries[2].StartedAt, base)
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 || limited[0].RunID != "run-c" {
		t.Errorf("limited = %+v", limited)
	}
}
