package report

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSortErrors_StageOrderThenOccurrence(t *testing.T) {
	errs := []StageError{
		{Stage: StageNarrative, Kind: KindExternalServiceError, Message: "n1"},
		{Stage: StageVisualization, Kind: KindRenderError, Message: "v1"},
		{Stage: StageStatistics, Kind: KindComputationError, Message: "s1"},
		{Stage: StageVisualization, Kind: KindRenderError, Message: "v2"},
		{Stage: StageStatistics, Kind: KindTimeout, Message: "s2"},
	}

	SortErrors(errs)

	var got []string
	for _, stageErr := range errs {
		got = append(got, stageErr.Message)
	}
	if want := "s1,s2,v1,v2,n1"; strings.Join(got, ",") != want {
		t.Errorf("order = %s, want %s", strings.Join(got, ","), want)
	}
}

func TestStageStatuses_SetAndOf(t *testing.T) {
	var statuses StageStatuses
	for _, stage := range Stages {
		statuses.Set(stage, StatusSkipped)
	}
	statuses.Set(StageValidation, StatusSucceeded)
	statuses.Set(Stage("unknown"), StatusFailed)

	if statuses.Of(StageValidation) != StatusSucceeded {
		t.Errorf("validation = %s", statuses.Of(StageValidation))
	}
	for _, stage := range Stages[1:] {
		if statuses.Of(stage) != StatusSkipped {
			t.Errorf("%s = %s, want skipped", stage, statuses.Of(stage))
		}
	}
	if statuses.Of(Stage("unknown")) != "" {
		t.Error("unknown stage should have no status")
	}
}

func TestStageStatus_Terminal(t *testing.T) {
	testCases := map[StageStatus]bool{
		StatusPending:   false,
		StatusRunning:   false,
		StatusSucceeded: true,
		StatusFailed:    true,
		StatusSkipped:   true,
	}
	for status, want := range testCases {
		if status.Terminal() != want {
			t.Errorf("%s.Terminal() = %t, want %t", status, status.Terminal(), want)
		}
	}
}

func TestReport_JSONShape(t *testing.T) {
	report := &Report{
		RunID: "run-1",
		StageStatus: StageStatuses{
			Validation:    StatusSucceeded,
			Statistics:    StatusFailed,
			Visualization: StatusSucceeded,
			Narrative:     StatusFailed,
		},
		Errors: []StageError{{Stage: StageStatistics, Kind: KindTimeout, Message: "deadline"}},
	}

	encoded, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		`"statistics":null`,
		`"visualizations":null`,
		`"narrative":null`,
		`"stageStatus":{"validation":"succeeded","statistics":"failed","visualization":"succeeded","narrative":"failed"}`,
		`"errors":[{"stage":"statistics","kind":"timeout","message":"deadline"}]`,
	} {
		if !strings.Contains(string(encoded), want) {
			t.Errorf("JSON missing %s:\n%s", want, encoded)
		}
	}

	failed := report.Failed()
	if len(failed) != 2 || failed[0] != StageStatistics || failed[1] != StageNarrative {
		t.Errorf("Failed() = %v", failed)
	}
}
