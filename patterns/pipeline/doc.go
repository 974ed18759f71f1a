// Package pipeline implements the EDA pipeline orchestrator.
//
// An Orchestrator drives one run of a Dataset through a fixed stage graph:
//
//	validation ──┬──> statistics ────┬──> narrative
//	             └──> visualization ─┘
//
// Levels are computed once with Kahn's algorithm. Stages of the same level
// run concurrently and the orchestrator waits for all of them before moving
// on. Every stage invocation gets its own timeout, a retry policy for
// transient failures and panic isolation. A stage failure is recorded in the
// run's State and never aborts the run:
//
//   - validation pass=false skips every downstream stage
//   - statistics or visualization failures still let the narrative run, with
//     the missing inputs marked unavailable
//   - a narrative failure without output is replaced with templated text
//
// Run returns a terminal report.Report, or ErrCancelled when the caller
// cancels the context. No partial report is produced on cancellation.
//
// Example:
//
//	orchestrator, err := pipeline.New(
//	    validation.New(),
//	    stats.New(),
//	    viz.New(renderer.NewStatic("https://cdn.example.com/plots")),
//	    narrator,
//	    pipeline.WithObserver(slogobs.New()),
//	)
//	if err != nil {
//	    return err
//	}
//	rep, err := orchestrator.Run(ctx, ds)
package pipeline
