package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/core/validation"
	"github.com/leofalp/edaflow/providers/reportstore"
)

var listColumns = []string{"run_id", "started_at", "finished_at", "passed", "failed_stages"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func sampleReport(runID string, startedAt time.Time) *report.Report {
	return &report.Report{
		RunID:      runID,
		Validation: &validation.Result{RowCount: 10, ColumnCount: 3, Pass: true},
		StageStatus: report.StageStatuses{
			Validation:    report.StatusSucceeded,
			Statistics:    report.StatusSucceeded,
			Visualization: report.StatusSucceeded,
			Narrative:     report.StatusFailed,
		},
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(time.Second),
	}
}

func TestNew_Defaults(t *testing.T) {
	store := New(newMock(t))
	if store.tableName != defaultTableName {
		t.Fatalf("expected default table name %q, got %q", defaultTableName, store.tableName)
	}
}

func TestNew_WithTableName(t *testing.T) {
	store := New(newMock(t), WithTableName("eda_runs"))
	if store.tableName != `"eda_runs"` {
		t.Fatalf("expected sanitized table name, got %q", store.tableName)
	}
}

func TestEnsureSchema(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS edaflow_reports").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_edaflow_reports_started_at").
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))

	if err := New(mock).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchema_CustomTableIndexName(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "eda_runs"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_eda_runs_started_at`).
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))

	if err := New(mock, WithTableName("eda_runs")).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchema_PropagatesError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("CREATE TABLE").WillReturnError(fmt.Errorf("permission denied"))

	err := New(mock).EnsureSchema(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSave_Upserts(t *testing.T) {
	mock := newMock(t)
	startedAt := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	rep := sampleReport("run-1", startedAt)

	mock.ExpectExec("INSERT INTO edaflow_reports").
		WithArgs("run-1", startedAt, startedAt.Add(time.Second), true, []string{"narrative"}, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := New(mock).Save(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_RejectsInvalidWithoutQuery(t *testing.T) {
	mock := newMock(t)

	err := New(mock).Save(context.Background(), &report.Report{})
	if !errors.Is(err, reportstore.ErrInvalidReport) {
		t.Fatalf("expected ErrInvalidReport, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database call: %v", err)
	}
}

func TestSave_PropagatesError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("INSERT INTO edaflow_reports").WillReturnError(fmt.Errorf("connection refused"))

	if err := New(mock).Save(context.Background(), sampleReport("run-1", time.Now())); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad_DecodesBody(t *testing.T) {
	mock := newMock(t)
	startedAt := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	body, err := json.Marshal(sampleReport("run-1", startedAt))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	mock.ExpectQuery("SELECT body FROM edaflow_reports").
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"body"}).AddRow(body))

	loaded, err := New(mock).Load(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.RunID != "run-1" || loaded.Validation.RowCount != 10 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.StageStatus.Narrative != report.StatusFailed {
		t.Fatalf("narrative status = %q", loaded.StageStatus.Narrative)
	}
}

func TestLoad_NotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT body FROM edaflow_reports").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := New(mock).Load(context.Background(), "missing")
	if !errors.Is(err, reportstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_CorruptBody(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT body FROM edaflow_reports").
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"body"}).AddRow([]byte("{not json")))

	_, err := New(mock).Load(context.Background(), "run-1")
	if err == nil || errors.Is(err, reportstore.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestList_ScansEntries(t *testing.T) {
	mock := newMock(t)
	newer := time.Date(2026, 6, 2, 8, 0, 0, 0, time.UTC)
	older := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT run_id, started_at").
		WithArgs(10).
		WillReturnRows(
			pgxmock.NewRows(listColumns).
				AddRow("run-b", newer, newer.Add(time.Second), true, []string{}).
				AddRow("run-a", older, older.Add(time.Second), false, []string{"statistics", "narrative"}),
		)

	entries, err := New(mock).List(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].RunID != "run-b" || !entries[0].Passed {
		t.Fatalf("entries = %+v", entries)
	}
	if len(entries[1].FailedStages) != 2 || entries[1].FailedStages[1] != "narrative" {
		t.Fatalf("failed stages = %v", entries[1].FailedStages)
	}
	if !entries[1].StartedAt.Equal(older) {
		t.Fatalf("StartedAt = %v, want %v", entries[1].StartedAt, older)
	}
}

func TestList_Empty(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT run_id, started_at").
		WillReturnRows(pgxmock.NewRows(listColumns))

	entries, err := New(mock).List(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
