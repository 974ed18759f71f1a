// Package viz implements the VisualizationAgent. It plans plot descriptors
// from column types and resolves them to artifact references through an
// external Renderer.
package viz

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/leofalp/edaflow/core/dataset"
	"github.com/leofalp/edaflow/core/stats"
)

// Kind is the type of plot a descriptor asks for.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindBoxplot   Kind = "boxplot"
	KindQQPlot    Kind = "qqplot"
	KindHeatmap   Kind = "heatmap"
)

// HeatmapID is the identifier of the single correlation heatmap.
const HeatmapID = "heatmap-correlation"

var (
	// ErrNilDataset is returned when planning without a dataset.
	ErrNilDataset = errors.New("viz: dataset is nil")

	// ErrNilSpec is returned when rendering without a spec.
	ErrNilSpec = errors.New("viz: spec is nil")

	// ErrNoRenderer is returned by Render when the agent has no renderer.
	ErrNoRenderer = errors.New("viz: no renderer configured")
)

// ArtifactRef points at a rendered plot. It is opaque to the pipeline.
type ArtifactRef struct {
	URI       string `json:"uri"`
	MediaType string `json:"mediaType,omitempty"`
}

// Descriptor is a resolvable plot specification.
type Descriptor struct {
	ID      string         `json:"id"`
	Kind    Kind           `json:"kind"`
	Columns []string       `json:"columns"`
	Params  map[string]any `json:"params,omitempty"`
}

// Plot is a descriptor plus the outcome of rendering it. After Render
// exactly one of Artifact and RenderError is set.
type Plot struct {
	Descriptor
	Artifact    *ArtifactRef `json:"artifact,omitempty"`
	RenderError string       `json:"renderError,omitempty"`
}

// Rendered reports whether the plot resolved to an artifact.
func (plot Plot) Rendered() bool { return plot.Artifact != nil }

// Spec is the VisualizationSpec: three plots per numeric column followed by
// one heatmap.
type Spec struct {
	Plots []Plot `json:"plots"`
}

// Failed returns the plots whose rendering failed, in spec order.
func (spec *Spec) Failed() []Plot {
	var failed []Plot
	for _, plot := range spec.Plots {
		if plot.RenderError != "" {
			failed = append(failed, plot)
		}
	}
	return failed
}

// Renderer turns a descriptor into an artifact. Implementations must be safe
// for concurrent use.
type Renderer interface {
	Render(ctx context.Context, descriptor Descriptor) (ArtifactRef, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, descriptor Descriptor) (ArtifactRef, error)

// Render calls fn.
func (fn RendererFunc) Render(ctx context.Context, descriptor Descriptor) (ArtifactRef, error) {
	return fn(ctx, descriptor)
}

// Option configures an Agent.
type Option func(*Agent)

// WithBins sets the maximum histogram bin count. Default: 20.
func WithBins(bins int) Option {
	return func(agent *Agent) {
		agent.bins = bins
	}
}

// WithRenderConcurrency bounds concurrent render calls. Default: 4.
func WithRenderConcurrency(limit int) Option {
	return func(agent *Agent) {
		agent.renderConcurrency = limit
	}
}

// Agent is the VisualizationAgent.
type Agent struct {
	renderer          Renderer
	bins              int
	renderConcurrency int
}

// New creates a VisualizationAgent that delegates rendering to renderer.
func New(renderer Renderer, opts ...Option) *Agent {
	agent := &Agent{
		renderer:          renderer,
		bins:              20,
		renderConcurrency: 4,
	}
	for _, opt := range opts {
		opt(agent)
	}
	if agent.bins < 1 {
		agent.bins = 1
	}
	if agent.renderConcurrency < 1 {
		agent.renderConcurrency = 1
	}
	return agent
}

// Plan derives plot descriptors from column types. summary is optional; when
// present, boxplots are annotated with the IQR outlier count and the heatmap
// with the number of undefined coefficients.
func (agent *Agent) Plan(ds *dataset.Dataset, summary *stats.Summary) (*Spec, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}

	numeric := ds.NumericColumns()
	spec := &Spec{Plots: make([]Plot, 0, len(numeric)*3+1)}
	names := make([]string, 0, len(numeric))

	for _, column := range numeric {
		name := column.Name()
		names = append(names, name)

		bins := min(agent.bins, max(len(column.Floats()), 1))
		boxplotParams := map[string]any{"whis": 1.5}
		if summary != nil {
			if columnSummary, found := summary.Column(name); found && columnSummary.Numeric != nil {
				boxplotParams["outliers"] = columnSummary.Numeric.Outliers
			}
		}

		spec.Plots = append(spec.Plots,
			Plot{Descriptor: Descriptor{
				ID:      fmt.Sprintf("%s-%s", KindHistogram, name),
				Kind:    KindHistogram,
				Columns: []string{name},
				Params:  map[string]any{"bins": bins, "kde": true},
			}},
			Plot{Descriptor: Descriptor{
				ID:      fmt.Sprintf("%s-%s", KindBoxplot, name),
				Kind:    KindBoxplot,
				Columns: []string{name},
				Params:  boxplotParams,
			}},
			Plot{Descriptor: Descriptor{
				ID:      fmt.Sprintf("%s-%s", KindQQPlot, name),
				Kind:    KindQQPlot,
				Columns: []string{name},
				Params:  map[string]any{"line": "s", "dist": "norm"},
			}},
		)
	}

	heatmapParams := map[string]any{"method": "pearson", "annot": true}
	if summary != nil {
		heatmapParams["undefined"] = countUndefined(summary.Correlation)
	}
	spec.Plots = append(spec.Plots, Plot{Descriptor: Descriptor{
		ID:      HeatmapID,
		Kind:    KindHeatmap,
		Columns: names,
		Params:  heatmapParams,
	}})

	return spec, nil
}

// Render resolves every descriptor concurrently. A failed plot carries its
// RenderError and never fails the spec; only context cancellation does.
// The returned spec is a copy, the input is left untouched.
func (agent *Agent) Render(ctx context.Context, spec *Spec) (*Spec, error) {
	if spec == nil {
		return nil, ErrNilSpec
	}
	if agent.renderer == nil {
		return nil, ErrNoRenderer
	}

	rendered := &Spec{Plots: make([]Plot, len(spec.Plots))}
	copy(rendered.Plots, spec.Plots)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(agent.renderConcurrency)

	for index := range rendered.Plots {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			plot := &rendered.Plots[index]
			artifact, err := agent.renderer.Render(groupCtx, plot.Descriptor)
			if err != nil {
				plot.RenderError = err.Error()
				return nil
			}
			plot.Artifact = &artifact
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rendered, nil
}

// Run plans and renders in one step.
func (agent *Agent) Run(ctx context.Context, ds *dataset.Dataset) (*Spec, error) {
	spec, err := agent.Plan(ds, nil)
	if err != nil {
		return nil, err
	}
	return agent.Render(ctx, spec)
}

func countUndefined(matrix stats.CorrelationMatrix) int {
	undefined := 0
	for _, row := range matrix.Values {
		for _, value := range row {
			if !value.Defined {
				undefined++
			}
		}
	}
	return undefined
}
