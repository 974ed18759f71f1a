package pipeline

import (
	"slices"
	"sync"
	"time"

	"github.com/leofalp/edaflow/core/dataset"
	"github.com/leofalp/edaflow/core/narrative"
	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/core/stats"
	"github.com/leofalp/edaflow/core/validation"
	"github.com/leofalp/edaflow/core/viz"
)

// RunStatus is the lifecycle state of a whole run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
)

// Delta is the output of one stage invocation. Nil slots are left untouched
// when the delta is applied.
type Delta struct {
	Validation     *validation.Result
	Statistics     *stats.Summary
	Visualizations *viz.Spec
	Narrative      *narrative.Text
}

func (delta Delta) empty() bool {
	return delta.Validation == nil && delta.Statistics == nil && delta.Visualizations == nil && delta.Narrative == nil
}

// State is the aggregate owned by one run. It is created with every slot
// empty and every stage pending, and only the orchestrator mutates it.
type State struct {
	mu sync.Mutex

	runID   string
	dataset *dataset.Dataset

	validation     *validation.Result
	statistics     *stats.Summary
	visualizations *viz.Spec
	narrative      *narrative.Text

	statuses  report.StageStatuses
	errors    []report.StageError
	runStatus RunStatus

	startedAt  time.Time
	finishedAt time.Time
}

func newState(runID string, ds *dataset.Dataset, startedAt time.Time) *State {
	state := &State{
		runID:     runID,
		dataset:   ds,
		runStatus: RunRunning,
		startedAt: startedAt,
	}
	for _, stage := range report.Stages {
		state.statuses.Set(stage, report.StatusPending)
	}
	return state
}

// RunID returns the run identifier.
func (state *State) RunID() string { return state.runID }

// Dataset returns the run's input.
func (state *State) Dataset() *dataset.Dataset { return state.dataset }

// RunStatus returns the run lifecycle status.
func (state *State) RunStatus() RunStatus {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.runStatus
}

// Statuses returns a copy of every stage status.
func (state *State) Statuses() report.StageStatuses {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.statuses
}

// Errors returns the recorded errors in occurrence order.
func (state *State) Errors() []report.StageError {
	state.mu.Lock()
	defer state.mu.Unlock()
	return slices.Clone(state.errors)
}

// Validation returns the validation slot.
func (state *State) Validation() *validation.Result {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.validation
}

// Statistics returns the statistics slot.
func (state *State) Statistics() *stats.Summary {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.statistics
}

// Visualizations returns the visualization slot.
func (state *State) Visualizations() *viz.Spec {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.visualizations
}

// Narrative returns the narrative slot.
func (state *State) Narrative() *narrative.Text {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.narrative
}

func (state *State) apply(delta Delta) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if delta.Validation != nil {
		state.validation = delta.Validation
	}
	if delta.Statistics != nil {
		state.statistics = delta.Statistics
	}
	if delta.Visualizations != nil {
		state.visualizations = delta.Visualizations
	}
	if delta.Narrative != nil {
		state.narrative = delta.Narrative
	}
}

// setStatus updates stage and returns the resulting snapshot.
func (state *State) setStatus(stage report.Stage, status report.StageStatus) report.StageStatuses {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.statuses.Set(stage, status)
	return state.statuses
}

func (state *State) status(stage report.Stage) report.StageStatus {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.statuses.Of(stage)
}

func (state *State) recordError(stageErr report.StageError) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.errors = append(state.errors, stageErr)
}

func (state *State) finish(status RunStatus, finishedAt time.Time) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.runStatus = status
	state.finishedAt = finishedAt
}

// passed reports whether stage succeeded. Validation additionally requires
// the dataset to have passed.
func (state *State) passed(stage report.Stage) bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.statuses.Of(stage) != report.StatusSucceeded {
		return false
	}
	if stage == report.StageValidation {
		return state.validation != nil && state.validation.Pass
	}
	return true
}

// narrativeInput collects whatever upstream slots exist.
func (state *State) narrativeInput() narrative.Input {
	state.mu.Lock()
	defer state.mu.Unlock()
	return narrative.Input{
		Meta:           state.dataset.Meta(),
		Validation:     state.validation,
		Summary:        state.statistics,
		Visualizations: state.visualizations,
	}
}
