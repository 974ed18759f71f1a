package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/internal/utils"
	"github.com/leofalp/edaflow/providers/observability"
)

// runObserver holds the observability provider and root span of one run.
// A nil provider disables every hook.
type runObserver struct {
	provider observability.Provider
	rootSpan observability.Span
}

func (o *Orchestrator) newRunObserver(ctx context.Context) *runObserver {
	provider := o.config.observer
	if provider == nil {
		provider = observability.ObserverFromContext(ctx)
	}
	return &runObserver{provider: provider}
}

// runStart opens the root span and attaches it to ctx.
func (observer *runObserver) runStart(ctx *context.Context, state *State) {
	if observer.provider == nil {
		return
	}

	ds := state.Dataset()
	attrs := []observability.Attribute{
		observability.String(observability.AttrRunID, state.RunID()),
		observability.Int(observability.AttrDatasetRows, ds.RowCount()),
		observability.Int(observability.AttrDatasetColumns, ds.ColumnCount()),
	}

	*ctx, observer.rootSpan = observer.provider.StartSpan(*ctx, observability.SpanPipelineRun, attrs...)
	*ctx = observability.ContextWithSpan(*ctx, observer.rootSpan)
	*ctx = observability.ContextWithObserver(*ctx, observer.provider)

	observer.provider.Info(*ctx, "pipeline run started", attrs...)
}

func (observer *runObserver) runCompleted(ctx context.Context, rep *report.Report, duration time.Duration) {
	if observer.provider == nil {
		return
	}

	observer.provider.Histogram(observability.MetricRunDuration).Record(ctx, duration.Seconds(),
		observability.String(observability.AttrRunStatus, string(RunCompleted)),
	)

	failed := rep.Failed()
	failedNames := make([]string, len(failed))
	for i, stage := range failed {
		failedNames[i] = string(stage)
	}

	observer.provider.Info(ctx, "pipeline run completed",
		observability.String(observability.AttrRunID, rep.RunID),
		observability.String(observability.AttrRunStatus, string(RunCompleted)),
		observability.StringSlice("pipeline.run.failed_stages", failedNames),
		observability.String(observability.AttrRunStageStatuses, utils.JSONToString(rep.StageStatus, false)),
		observability.Int("pipeline.run.errors", len(rep.Errors)),
		observability.Duration(observability.AttrDuration, duration),
	)

	if observer.rootSpan != nil {
		observer.rootSpan.SetAttributes(observability.String(observability.AttrRunStatus, string(RunCompleted)))
		observer.rootSpan.SetStatus(observability.StatusOK, "pipeline run completed")
		observer.rootSpan.End()
	}
}

func (observer *runObserver) runCancelled(ctx context.Context, state *State, cause error, duration time.Duration) {
	if observer.provider == nil {
		return
	}

	observer.provider.Histogram(observability.MetricRunDuration).Record(ctx, duration.Seconds(),
		observability.String(observability.AttrRunStatus, string(RunCancelled)),
	)

	observer.provider.Warn(ctx, "pipeline run cancelled",
		observability.String(observability.AttrRunID, state.RunID()),
		observability.Error(cause),
		observability.Duration(observability.AttrDuration, duration),
	)

	if observer.rootSpan != nil {
		observer.rootSpan.RecordError(cause)
		observer.rootSpan.SetAttributes(observability.String(observability.AttrRunStatus, string(RunCancelled)))
		observer.rootSpan.SetStatus(observability.StatusError, "pipeline run cancelled")
		observer.rootSpan.End()
	}
}

// stageStart opens a child span for stage and attaches it to ctx.
func (observer *runObserver) stageStart(ctx *context.Context, stage report.Stage, level int, dependencies []string) {
	if observer.provider == nil {
		return
	}

	var stageSpan observability.Span
	*ctx, stageSpan = observer.provider.StartSpan(*ctx, observability.SpanPipelineStage,
		observability.String(observability.AttrStage, string(stage)),
		observability.Int(observability.AttrStageLevel, level),
		observability.StringSlice(observability.AttrStageDependencies, dependencies),
	)
	*ctx = observability.ContextWithSpan(*ctx, stageSpan)

	observer.provider.Debug(*ctx, "stage started",
		observability.String(observability.AttrStage, string(stage)),
		observability.Int(observability.AttrStageLevel, level),
	)
}

func (observer *runObserver) stageCompleted(ctx context.Context, stage report.Stage, duration time.Duration) {
	if observer.provider == nil {
		return
	}

	observer.recordStageMetrics(ctx, stage, report.StatusSucceeded, duration)
	observer.provider.Info(ctx, "stage succeeded",
		observability.String(observability.AttrStage, string(stage)),
		observability.Duration(observability.AttrDuration, duration),
	)

	if stageSpan := observability.SpanFromContext(ctx); stageSpan != nil {
		stageSpan.SetAttributes(observability.String(observability.AttrStageStatus, string(report.StatusSucceeded)))
		stageSpan.SetStatus(observability.StatusOK, "stage succeeded")
		stageSpan.End()
	}
}

func (observer *runObserver) stageFailed(ctx context.Context, stage report.Stage, kind report.ErrorKind, stageErr error, duration time.Duration) {
	if observer.provider == nil {
		return
	}

	observer.recordStageMetrics(ctx, stage, report.StatusFailed, duration)

	attrs := []observability.Attribute{
		observability.String(observability.AttrStage, string(stage)),
		observability.String(observability.AttrErrorKind, string(kind)),
		observability.Error(stageErr),
		observability.Duration(observability.AttrDuration, duration),
	}
	var recovered *panicError
	if errors.As(stageErr, &recovered) {
		attrs = append(attrs, observability.String("pipeline.stage.stack", string(recovered.stack)))
	}
	observer.provider.Error(ctx, "stage failed", attrs...)

	if stageSpan := observability.SpanFromContext(ctx); stageSpan != nil {
		stageSpan.RecordError(stageErr)
		stageSpan.SetAttributes(
			observability.String(observability.AttrStageStatus, string(report.StatusFailed)),
			observability.String(observability.AttrErrorKind, string(kind)),
		)
		stageSpan.SetStatus(observability.StatusError, "stage failed")
		stageSpan.End()
	}
}

func (observer *runObserver) stageSkipped(ctx context.Context, stage report.Stage, reason string) {
	if observer.provider == nil {
		return
	}

	observer.provider.Counter(observability.MetricStageCount).Add(ctx, 1,
		observability.String(observability.AttrStage, string(stage)),
		observability.String(observability.AttrStageStatus, string(report.StatusSkipped)),
	)
	observer.provider.Info(ctx, "stage skipped",
		observability.String(observability.AttrStage, string(stage)),
		observability.String("pipeline.stage.skip_reason", reason),
	)
}

func (observer *runObserver) stageRetry(ctx context.Context, stage report.Stage, attempt int, err error, wait time.Duration) {
	if observer.provider == nil {
		return
	}

	observer.provider.Counter(observability.MetricStageRetries).Add(ctx, 1,
		observability.String(observability.AttrStage, string(stage)),
	)
	observer.provider.Warn(ctx, "stage attempt failed, retrying",
		observability.String(observability.AttrStage, string(stage)),
		observability.Int(observability.AttrStageAttempt, attempt),
		observability.Error(err),
		observability.Duration("retry.wait", wait),
	)
}

func (observer *runObserver) sinkFailed(ctx context.Context, runID string, err error) {
	if observer.provider == nil {
		return
	}
	observer.provider.Error(ctx, "saving report failed",
		observability.String(observability.AttrRunID, runID),
		observability.Error(err),
	)
}

func (observer *runObserver) recordStageMetrics(ctx context.Context, stage report.Stage, status report.StageStatus, duration time.Duration) {
	observer.provider.Histogram(observability.MetricStageDuration).Record(ctx, duration.Seconds(),
		observability.String(observability.AttrStage, string(stage)),
	)
	observer.provider.Counter(observability.MetricStageCount).Add(ctx, 1,
		observability.String(observability.AttrStage, string(stage)),
		observability.String(observability.AttrStageStatus, string(status)),
	)
}
