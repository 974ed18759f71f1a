package reportstore

import (
	"errors"
	"testing"

	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/core/validation"
)

func TestCheck(t *testing.T) {
	if err := Check(nil); !errors.Is(err, ErrInvalidReport) {
		t.Errorf("nil report: got %v", err)
	}
	if err := Check(&report.Report{}); !errors.Is(err, ErrInvalidReport) {
		t.Errorf("empty run id: got %v", err)
	}
	if err := Check(&report.Report{RunID: "run-1"}); err != nil {
		t.Errorf("valid report: got %v", err)
	}
}

func TestEntryOf(t *testing.T) {
	rep := &report.Report{
		RunID:      "run-1",
		Validation: &validation.Result{Pass: true},
		StageStatus: report.StageStatuses{
			Validation:    report.StatusSucceeded,
			Statistics:    report.StatusFailed,
			Visualization: report.StatusSucceeded,
			Narrative:     report.StatusFailed,
		},
	}

	entry := EntryOf(rep)
	if entry.RunID != "run-1" || !entry.Passed {
		t.Errorf("entry = %+v", entry)
	}
	if len(entry.FailedStages) != 2 || entry.FailedStages[0] != "statistics" || entry.FailedStages[1] != "narrative" {
		t.Errorf("failed stages = %v", entry.FailedStages)
	}

	if EntryOf(&report.Report{RunID: "run-2"}).Passed {
		t.Error("a report without validation has not passed")
	}
}
