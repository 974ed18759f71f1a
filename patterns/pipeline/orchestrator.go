package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leofalp/edaflow/core/dataset"
	"github.com/leofalp/edaflow/core/narrative"
	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/core/retry"
	"github.com/leofalp/edaflow/core/stats"
	"github.com/leofalp/edaflow/core/validation"
	"github.com/leofalp/edaflow/core/viz"
	"github.com/leofalp/edaflow/internal/utils"
)

// Validator is the ValidationAgent contract.
type Validator interface {
	Validate(ctx context.Context, ds *dataset.Dataset) (*validation.Result, error)
}

// Summarizer is the StatisticsAgent contract.
type Summarizer interface {
	Summarize(ctx context.Context, ds *dataset.Dataset) (*stats.Summary, error)
}

// Visualizer is the VisualizationAgent contract: plan and render.
type Visualizer interface {
	Run(ctx context.Context, ds *dataset.Dataset) (*viz.Spec, error)
}

// Narrator is the NarrativeAgent contract. A Text returned together with an
// error is kept in the report.
type Narrator interface {
	Narrate(ctx context.Context, input narrative.Input) (*narrative.Text, error)
}

// Orchestrator runs datasets through the stage graph. It holds no per-run
// state, so concurrent Run calls are safe.
type Orchestrator struct {
	validator  Validator
	summarizer Summarizer
	visualizer Visualizer
	narrator   Narrator

	plan   plan
	config config
}

// New builds an orchestrator from the four agents.
func New(validator Validator, summarizer Summarizer, visualizer Visualizer, narrator Narrator, opts ...Option) (*Orchestrator, error) {
	var missing []string
	if validator == nil {
		missing = append(missing, "validator")
	}
	if summarizer == nil {
		missing = append(missing, "summarizer")
	}
	if visualizer == nil {
		missing = append(missing, "visualizer")
	}
	if narrator == nil {
		missing = append(missing, "narrator")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrNilAgent, strings.Join(missing, ", "))
	}

	stagePlan, err := buildPlan()
	if err != nil {
		return nil, fmt.Errorf("invalid stage table: %w", err)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Orchestrator{
		validator:  validator,
		summarizer: summarizer,
		visualizer: visualizer,
		narrator:   narrator,
		plan:       stagePlan,
		config:     cfg,
	}, nil
}

// Levels returns the stage levels in execution order.
func (o *Orchestrator) Levels() [][]report.Stage {
	levels := make([][]report.Stage, len(o.plan.levels))
	for i, level := range o.plan.levels {
		levels[i] = append([]report.Stage(nil), level...)
	}
	return levels
}

// Run drives ds through every stage and returns the terminal report. Stage
// failures are recorded in the report; the only errors are ErrNilDataset and
// ErrCancelled.
func (o *Orchestrator) Run(ctx context.Context, ds *dataset.Dataset) (*report.Report, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}

	state := newState(o.config.newRunID(), ds, o.config.now())
	observer := o.newRunObserver(ctx)
	observer.runStart(&ctx, state)
	timer := utils.NewTimer()

	for levelIndex, level := range o.plan.levels {
		if err := ctx.Err(); err != nil {
			return nil, o.cancel(ctx, observer, state, timer, err)
		}

		ready := o.readyStages(ctx, observer, state, level)
		if len(ready) == 0 {
			continue
		}

		var group errgroup.Group
		for _, stage := range ready {
			group.Go(func() error {
				o.runStage(ctx, observer, state, stage, levelIndex)
				return nil
			})
		}
		_ = group.Wait() //nolint:errcheck // stage goroutines never return errors

		if err := ctx.Err(); err != nil {
			return nil, o.cancel(ctx, observer, state, timer, err)
		}
	}

	state.finish(RunCompleted, o.config.now())
	rep := Assemble(state)
	observer.runCompleted(ctx, rep, timer.Stop())

	if o.config.sink != nil {
		if err := o.config.sink.Save(context.WithoutCancel(ctx), rep); err != nil {
			observer.sinkFailed(ctx, rep.RunID, err)
		}
	}

	return rep, nil
}

func (o *Orchestrator) cancel(ctx context.Context, observer *runObserver, state *State, timer *utils.Timer, cause error) error {
	state.finish(RunCancelled, o.config.now())
	observer.runCancelled(ctx, state, cause, timer.Stop())
	return errors.Join(ErrCancelled, cause)
}

// readyStages marks skipped stages and returns the ones to run. A stage is
// skipped when a dependency was skipped or a gate dependency did not pass.
func (o *Orchestrator) readyStages(ctx context.Context, observer *runObserver, state *State, level []report.Stage) []report.Stage {
	ready := make([]report.Stage, 0, len(level))

	for _, stage := range level {
		reason := ""
		for _, dep := range o.plan.dependencies[stage] {
			if state.status(dep.stage) == report.StatusSkipped {
				reason = fmt.Sprintf("upstream stage %s was skipped", dep.stage)
				break
			}
			if dep.gate && !state.passed(dep.stage) {
				reason = fmt.Sprintf("upstream stage %s did not pass", dep.stage)
				break
			}
		}

		if reason != "" {
			o.transition(state, stage, report.StatusSkipped)
			observer.stageSkipped(ctx, stage, reason)
			continue
		}
		ready = append(ready, stage)
	}

	return ready
}

func (o *Orchestrator) transition(state *State, stage report.Stage, status report.StageStatus) {
	statuses := state.setStatus(stage, status)
	if o.config.transition != nil {
		o.config.transition(stage, status, statuses)
	}
}

// runStage invokes one stage under its timeout and retry policy and folds
// the outcome into state.
func (o *Orchestrator) runStage(ctx context.Context, observer *runObserver, state *State, stage report.Stage, level int) {
	o.transition(state, stage, report.StatusRunning)

	stageCtx := ctx
	observer.stageStart(&stageCtx, stage, level, o.plan.dependencyNames(stage))
	timer := utils.NewTimer()

	policy := o.config.policies[stage]
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		observer.stageRetry(stageCtx, stage, attempt, err, wait)
	}

	var last Delta
	err := retry.Do(stageCtx, policy, func(attemptCtx context.Context) error {
		delta, invokeErr := o.invokeWithTimeout(attemptCtx, state, stage)
		last = delta
		return invokeErr
	})

	if !last.empty() {
		state.apply(last)
	}

	if err == nil {
		o.recordOutcome(state, stage)
		o.transition(state, stage, report.StatusSucceeded)
		observer.stageCompleted(stageCtx, stage, timer.Stop())
		return
	}

	kind := classify(stage, err)
	state.recordError(report.StageError{Stage: stage, Kind: kind, Message: err.Error()})

	if stage == report.StageNarrative && state.Narrative() == nil {
		state.apply(Delta{Narrative: narrative.Fallback(state.narrativeInput())})
	}

	o.transition(state, stage, report.StatusFailed)
	observer.stageFailed(stageCtx, stage, kind, err, timer.Stop())
}

// recordOutcome records the non-fatal findings of a successful stage.
func (o *Orchestrator) recordOutcome(state *State, stage report.Stage) {
	switch stage {
	case report.StageValidation:
		result := state.Validation()
		if result != nil && !result.Pass {
			state.recordError(report.StageError{
				Stage:   stage,
				Kind:    report.KindValidationFailure,
				Message: strings.Join(result.FailureReasons, "; "),
			})
		}
	case report.StageVisualization:
		if spec := state.Visualizations(); spec != nil {
			for _, plot := range spec.Failed() {
				state.recordError(report.StageError{
					Stage:   stage,
					Kind:    report.KindRenderError,
					Message: fmt.Sprintf("%s: %s", plot.ID, plot.RenderError),
				})
			}
		}
	}
}

type invocation struct {
	delta Delta
	err   error
}

// invokeWithTimeout runs the stage agent on its own goroutine so that an
// agent ignoring its context still cannot hold the run past the timeout.
// The result of an abandoned invocation is dropped.
func (o *Orchestrator) invokeWithTimeout(ctx context.Context, state *State, stage report.Stage) (Delta, error) {
	timeout := o.config.timeouts[stage]
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan invocation, 1)
	go func() {
		delta, err := o.invoke(attemptCtx, state, stage)
		done <- invocation{delta: delta, err: err}
	}()

	select {
	case result := <-done:
		if result.err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return result.delta, fmt.Errorf("stage %s timed out after %s: %w", stage, timeout, result.err)
		}
		return result.delta, result.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return Delta{}, ctx.Err()
		}
		return Delta{}, fmt.Errorf("stage %s timed out after %s: %w", stage, timeout, attemptCtx.Err())
	}
}

// invoke calls the agent behind stage, converting a panic into an error.
func (o *Orchestrator) invoke(ctx context.Context, state *State, stage report.Stage) (delta Delta, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			delta = Delta{}
			err = &panicError{stage: stage, value: recovered, stack: debug.Stack()}
		}
	}()

	ds := state.Dataset()
	switch stage {
	case report.StageValidation:
		result, validateErr := o.validator.Validate(ctx, ds)
		return Delta{Validation: result}, validateErr
	case report.StageStatistics:
		summary, summarizeErr := o.summarizer.Summarize(ctx, ds)
		return Delta{Statistics: summary}, summarizeErr
	case report.StageVisualization:
		spec, vizErr := o.visualizer.Run(ctx, ds)
		return Delta{Visualizations: spec}, vizErr
	case report.StageNarrative:
		text, narrateErr := o.narrator.Narrate(ctx, state.narrativeInput())
		return Delta{Narrative: text}, narrateErr
	}
	return Delta{}, fmt.Errorf("unknown stage %q", stage)
}
