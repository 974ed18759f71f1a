// Package report defines the externally consumed EDA report: stage names,
// stage statuses, classified stage errors and the Report projection itself.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/leofalp/edaflow/core/narrative"
	"github.com/leofalp/edaflow/core/stats"
	"github.com/leofalp/edaflow/core/validation"
	"github.com/leofalp/edaflow/core/viz"
)

// Stage names one pipeline stage.
type Stage string

const (
	StageValidation    Stage = "validation"
	StageStatistics    Stage = "statistics"
	StageVisualization Stage = "visualization"
	StageNarrative     Stage = "narrative"
)

// Stages lists every stage in dependency order.
var Stages = []Stage{StageValidation, StageStatistics, StageVisualization, StageNarrative}

// Order returns the position of stage in Stages, or len(Stages) when unknown.
func (stage Stage) Order() int {
	if i := slices.Index(Stages, stage); i >= 0 {
		return i
	}
	return len(Stages)
}

// StageStatus is the lifecycle state of a stage within one run.
type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusRunning   StageStatus = "running"
	StatusSucceeded StageStatus = "succeeded"
	StatusFailed    StageStatus = "failed"
	StatusSkipped   StageStatus = "skipped"
)

// Terminal reports whether status can no longer change.
func (status StageStatus) Terminal() bool {
	return status == StatusSucceeded || status == StatusFailed || status == StatusSkipped
}

// ErrorKind classifies a recorded stage error.
type ErrorKind string

const (
	KindValidationFailure    ErrorKind = "validation_failure"
	KindComputationError     ErrorKind = "computation_error"
	KindRenderError          ErrorKind = "render_error"
	KindExternalServiceError ErrorKind = "external_service_error"
	KindTimeout              ErrorKind = "timeout"
	KindCancelled            ErrorKind = "cancelled"
	KindInternalError        ErrorKind = "internal_error"
)

// StageError is one entry of the report's error list.
type StageError struct {
	Stage   Stage     `json:"stage"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// StageStatuses holds the status of every stage.
type StageStatuses struct {
	Validation    StageStatus `json:"validation"`
	Statistics    StageStatus `json:"statistics"`
	Visualization StageStatus `json:"visualization"`
	Narrative     StageStatus `json:"narrative"`
}

// Of returns the status of stage.
func (statuses StageStatuses) Of(stage Stage) StageStatus {
	switch stage {
	case StageValidation:
		return statuses.Validation
	case StageStatistics:
		return statuses.Statistics
	case StageVisualization:
		return statuses.Visualization
	case StageNarrative:
		return statuses.Narrative
	}
	return ""
}

// Set updates the status of stage. Unknown stages are ignored.
func (statuses *StageStatuses) Set(stage Stage, status StageStatus) {
	switch stage {
	case StageValidation:
		statuses.Validation = status
	case StageStatistics:
		statuses.Statistics = status
	case StageVisualization:
		statuses.Visualization = status
	case StageNarrative:
		statuses.Narrative = status
	}
}

// Report is the immutable result of one pipeline run.
type Report struct {
	RunID          string             `json:"runId"`
	Validation     *validation.Result `json:"validation"`
	Statistics     *stats.Summary     `json:"statistics"`
	Visualizations *viz.Spec          `json:"visualizations"`
	Narrative      *narrative.Text    `json:"narrative"`
	StageStatus    StageStatuses      `json:"stageStatus"`
	Errors         []StageError       `json:"errors"`
	StartedAt      time.Time          `json:"startedAt"`
	FinishedAt     time.Time          `json:"finishedAt"`
}

// Failed lists the stages whose status is failed, in dependency order.
func (report *Report) Failed() []Stage {
	var failed []Stage
	for _, stage := range Stages {
		if report.StageStatus.Of(stage) == StatusFailed {
			failed = append(failed, stage)
		}
	}
	return failed
}

// SortErrors orders errors by stage dependency order. Entries of the same
// stage keep their relative order.
func SortErrors(errs []StageError) {
	slices.SortStableFunc(errs, func(a, b StageError) int {
		return cmp.Compare(a.Stage.Order(), b.Stage.Order())
	})
}
