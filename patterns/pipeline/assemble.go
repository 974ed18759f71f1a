package pipeline

import (
	"slices"

	"github.com/leofalp/edaflow/core/report"
)

// Assemble projects a terminal State into the outward Report. Errors are
// ordered by stage dependency order, then by occurrence within the stage, so
// the completion order of concurrent stages never changes the result.
func Assemble(state *State) *report.Report {
	state.mu.Lock()
	defer state.mu.Unlock()

	errs := slices.Clone(state.errors)
	if errs == nil {
		errs = []report.StageError{}
	}
	report.SortErrors(errs)

	return &report.Report{
		RunID:          state.runID,
		Validation:     state.validation,
		Statistics:     state.statistics,
		Visualizations: state.visualizations,
		Narrative:      state.narrative,
		StageStatus:    state.statuses,
		Errors:         errs,
		StartedAt:      state.startedAt,
		FinishedAt:     state.finishedAt,
	}
}
