package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/providers/ai"
)

var (
	// ErrNilDataset is returned by Run when invoked without a dataset.
	ErrNilDataset = errors.New("pipeline: dataset is nil")

	// ErrNilAgent is returned by New when any agent is missing.
	ErrNilAgent = errors.New("pipeline: agent is nil")

	// ErrCancelled is returned by Run when the caller cancelled the run. It
	// is joined with the context error.
	ErrCancelled = errors.New("pipeline: run cancelled")
)

// panicError is a recovered panic from a stage.
type panicError struct {
	stage report.Stage
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.stage, e.value)
}

// classify maps a stage error onto the report taxonomy.
func classify(stage report.Stage, err error) report.ErrorKind {
	var recovered *panicError
	switch {
	case errors.As(err, &recovered):
		return report.KindInternalError
	case errors.Is(err, context.Canceled):
		return report.KindCancelled
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ai.ErrTimeout):
		return report.KindTimeout
	case stage == report.StageNarrative:
		return report.KindExternalServiceError
	default:
		return report.KindComputationError
	}
}
