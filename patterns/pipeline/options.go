package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/core/retry"
	"github.com/leofalp/edaflow/providers/observability"
)

// Sink receives every finished report, e.g. a report store. Save errors are
// logged and never change the report.
type Sink interface {
	Save(ctx context.Context, rep *report.Report) error
}

// TransitionHook observes every stage status change together with a
// snapshot of all statuses taken right after it.
type TransitionHook func(stage report.Stage, status report.StageStatus, statuses report.StageStatuses)

// Option configures an Orchestrator.
type Option func(*config)

type config struct {
	timeouts   map[report.Stage]time.Duration
	policies   map[report.Stage]retry.Policy
	observer   observability.Provider
	sink       Sink
	newRunID   func() string
	now        func() time.Time
	transition TransitionHook
}

func defaultConfig() config {
	return config{
		timeouts: map[report.Stage]time.Duration{
			report.StageValidation:    30 * time.Second,
			report.StageStatistics:    60 * time.Second,
			report.StageVisualization: 120 * time.Second,
			report.StageNarrative:     180 * time.Second,
		},
		policies: map[report.Stage]retry.Policy{
			report.StageValidation:    retry.Disabled,
			report.StageStatistics:    {MaxRetries: 3},
			report.StageVisualization: {MaxRetries: 3},
			// The narrative client retries rate limits and timeouts itself.
			report.StageNarrative: retry.Disabled,
		},
		newRunID: uuid.NewString,
		now:      time.Now,
	}
}

// WithStageTimeout bounds each invocation of stage. Defaults: validation 30s,
// statistics 60s, visualization 120s, narrative 180s.
func WithStageTimeout(stage report.Stage, timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.timeouts[stage] = timeout
		}
	}
}

// WithRetryPolicy sets the retry policy of stage. Validation is never
// retried; a policy given for it is ignored.
func WithRetryPolicy(stage report.Stage, policy retry.Policy) Option {
	return func(c *config) {
		if stage == report.StageValidation {
			return
		}
		c.policies[stage] = policy
	}
}

// WithMaxRetries sets the retry budget of the statistics and visualization
// stages, keeping the rest of their policies.
func WithMaxRetries(maxRetries int) Option {
	return func(c *config) {
		for _, stage := range []report.Stage{report.StageStatistics, report.StageVisualization} {
			policy := c.policies[stage]
			policy.MaxRetries = maxRetries
			if maxRetries == 0 {
				policy.MaxRetries = -1
			}
			c.policies[stage] = policy
		}
	}
}

// WithObserver enables spans, metrics and logs for every run. Without it the
// observer is taken from the Run context, if any.
func WithObserver(observer observability.Provider) Option {
	return func(c *config) { c.observer = observer }
}

// WithSink hands every finished report to sink.
func WithSink(sink Sink) Option {
	return func(c *config) { c.sink = sink }
}

// WithRunIDGenerator replaces the default UUID run identifiers.
func WithRunIDGenerator(generate func() string) Option {
	return func(c *config) { c.newRunID = generate }
}

// WithClock replaces time.Now for the report timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithTransitionHook registers hook for stage status changes. The hook runs
// on the stage goroutine and must not block.
func WithTransitionHook(hook TransitionHook) Option {
	return func(c *config) { c.transition = hook }
}
