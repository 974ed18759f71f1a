// Package stats implements the StatisticsAgent: deterministic descriptive
// statistics per column and a Pearson correlation matrix over the numeric
// columns of a Dataset.
package stats

import (
	"context"
	"errors"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/leofalp/edaflow/core/dataset"
)

// ErrNilDataset is returned when Summarize is called without a dataset.
var ErrNilDataset = errors.New("stats: dataset is nil")

// outlierFence is the IQR multiplier for outlier fences.
const outlierFence = 1.5

// NumericStats are the descriptives of a numeric column.
type NumericStats struct {
	Mean     Number `json:"mean"`
	Std      Number `json:"std"`
	Min      Number `json:"min"`
	Q1       Number `json:"q1"`
	Median   Number `json:"median"`
	Q3       Number `json:"q3"`
	Max      Number `json:"max"`
	Outliers int    `json:"outliers"`
}

// ValueCount is one entry of a frequency table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalStats describe categorical and text columns.
type CategoricalStats struct {
	Cardinality int          `json:"cardinality"`
	TopValues   []ValueCount `json:"topValues"`
}

// DatetimeStats describe datetime columns.
type DatetimeStats struct {
	Earliest *time.Time `json:"earliest"`
	Latest   *time.Time `json:"latest"`
}

// ColumnSummary holds the statistics of one column. Exactly one of
// Numeric, Categorical and Datetime is set.
type ColumnSummary struct {
	Name        string             `json:"name"`
	Type        dataset.ColumnType `json:"type"`
	Count       int                `json:"count"`
	Missing     int                `json:"missing"`
	Numeric     *NumericStats      `json:"numeric,omitempty"`
	Categorical *CategoricalStats  `json:"categorical,omitempty"`
	Datetime    *DatetimeStats     `json:"datetime,omitempty"`
}

// CorrelationMatrix is a square matrix over Columns. Values[i][j] is the
// Pearson coefficient between Columns[i] and Columns[j].
type CorrelationMatrix struct {
	Columns []string   `json:"columns"`
	Values  [][]Number `json:"values"`
}

// At returns the coefficient for two column names.
func (matrix CorrelationMatrix) At(columnA, columnB string) (Number, bool) {
	indexA, indexB := -1, -1
	for index, name := range matrix.Columns {
		if name == columnA {
			indexA = index
		}
		if name == columnB {
			indexB = index
		}
	}
	if indexA < 0 || indexB < 0 {
		return Number{}, false
	}
	return matrix.Values[indexA][indexB], true
}

// Summary is the output of the StatisticsAgent.
type Summary struct {
	Columns     []ColumnSummary   `json:"columns"`
	Correlation CorrelationMatrix `json:"correlation"`
}

// Column returns the summary of the named column.
func (summary *Summary) Column(name string) (ColumnSummary, bool) {
	for _, column := range summary.Columns {
		if column.Name == name {
			return column, true
		}
	}
	return ColumnSummary{}, false
}

// Option configures an Agent.
type Option func(*Agent)

// WithTopValues sets how many most-frequent values are reported for
// categorical and text columns. Default: 5.
func WithTopValues(n int) Option {
	return func(agent *Agent) {
		agent.topValues = n
	}
}

// Agent is the StatisticsAgent.
type Agent struct {
	topValues int
}

// New creates a StatisticsAgent.
func New(opts ...Option) *Agent {
	agent := &Agent{topValues: 5}
	for _, opt := range opts {
		opt(agent)
	}
	return agent
}

// Summarize computes the statistical summary of ds. Output depends only on
// the dataset contents.
func (agent *Agent) Summarize(ctx context.Context, ds *dataset.Dataset) (*Summary, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}

	summary := &Summary{Columns: make([]ColumnSummary, 0, ds.ColumnCount())}

	for _, column := range ds.Columns() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		missing := column.NullCount()
		columnSummary := ColumnSummary{
			Name:    column.Name(),
			Type:    column.Type(),
			Count:   column.Len() - missing,
			Missing: missing,
		}

		switch column.Type() {
		case dataset.TypeNumeric:
			columnSummary.Numeric = describeNumeric(column.Floats())
		case dataset.TypeDatetime:
			columnSummary.Datetime = describeDatetime(column)
		default:
			columnSummary.Categorical = agent.describeCategorical(column)
		}

		summary.Columns = append(summary.Columns, columnSummary)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	summary.Correlation = correlate(ds.NumericColumns())

	return summary, nil
}

func describeNumeric(values []float64) *NumericStats {
	if len(values) == 0 {
		return &NumericStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	numeric := &NumericStats{
		Mean:   Defined(stat.Mean(values, nil)),
		Std:    Undefined(),
		Min:    Defined(floats.Min(values)),
		Q1:     Defined(Quantile(sorted, 0.25)),
		Median: Defined(Quantile(sorted, 0.5)),
		Q3:     Defined(Quantile(sorted, 0.75)),
		Max:    Defined(floats.Max(values)),
	}
	if len(values) > 1 {
		numeric.Std = Defined(stat.StdDev(values, nil))
	}

	numeric.Outliers = CountOutliers(sorted)
	return numeric
}

// CountOutliers counts values outside [Q1 - 1.5·IQR, Q3 + 1.5·IQR].
// sorted must be in ascending order.
func CountOutliers(sorted []float64) int {
	if len(sorted) == 0 {
		return 0
	}
	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	spread := q3 - q1
	lower, upper := q1-outlierFence*spread, q3+outlierFence*spread

	outliers := 0
	for _, value := range sorted {
		if value < lower || value > upper {
			outliers++
		}
	}
	return outliers
}

func (agent *Agent) describeCategorical(column *dataset.Column) *CategoricalStats {
	frequencies := make(map[string]int)
	for _, value := range column.Values() {
		if value == nil {
			continue
		}
		frequencies[dataset.FormatValue(value)]++
	}

	counts := make([]ValueCount, 0, len(frequencies))
	for value, count := range frequencies {
		counts = append(counts, ValueCount{Value: value, Count: count})
	}
	sort.Slice(counts, func(indexA, indexB int) bool {
		if counts[indexA].Count != counts[indexB].Count {
			return counts[indexA].Count > counts[indexB].Count
		}
		return counts[indexA].Value < counts[indexB].Value
	})

	if len(counts) > agent.topValues {
		counts = counts[:agent.topValues]
	}

	return &CategoricalStats{Cardinality: len(frequencies), TopValues: counts}
}

func describeDatetime(column *dataset.Column) *DatetimeStats {
	datetime := &DatetimeStats{}
	for _, value := range column.Values() {
		instant, isTime := value.(time.Time)
		if !isTime {
			continue
		}
		if datetime.Earliest == nil || instant.Before(*datetime.Earliest) {
			earliest := instant
			datetime.Earliest = &earliest
		}
		if datetime.Latest == nil || instant.After(*datetime.Latest) {
			latest := instant
			datetime.Latest = &latest
		}
	}
	return datetime
}
