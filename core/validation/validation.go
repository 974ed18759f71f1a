// Package validation implements the ValidationAgent: a deterministic check of
// a Dataset's structural integrity (missing values, duplicate rows and type
// consistency). It never mutates the dataset and never performs I/O.
package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/leofalp/edaflow/core/dataset"
)

// TypeFlagKind names a per-column type problem.
type TypeFlagKind string

const (
	// FlagTypeMismatch means the majority of a column's values disagree with
	// its declared type. It fails the whole dataset.
	FlagTypeMismatch TypeFlagKind = "type-mismatch"

	// FlagTypeAmbiguous means no value kind holds more than half of the
	// column's non-null values. It fails the column only.
	FlagTypeAmbiguous TypeFlagKind = "type-ambiguous"
)

// ErrNilDataset is returned when Validate is called without a dataset.
var ErrNilDataset = errors.New("validation: dataset is nil")

// TypeFlag records one column-level type problem.
type TypeFlag struct {
	Column   string            `json:"column"`
	Flag     TypeFlagKind      `json:"flag"`
	Declared dataset.ValueKind `json:"declared"`
	Observed dataset.ValueKind `json:"observed,omitempty"`
}

// ColumnReport is the validation outcome for a single column.
type ColumnReport struct {
	Name                  string             `json:"name"`
	Type                  dataset.ColumnType `json:"type"`
	MissingCount          int                `json:"missingCount"`
	MissingFraction       float64            `json:"missingFraction"`
	MissingAboveThreshold bool               `json:"missingAboveThreshold"`
	MajorityKind          dataset.ValueKind  `json:"majorityKind,omitempty"`
	TypeMismatch          bool               `json:"typeMismatch"`
	TypeAmbiguous         bool               `json:"typeAmbiguous"`
	Pass                  bool               `json:"pass"`
}

// Result is the immutable output of the ValidationAgent.
type Result struct {
	RowCount              int            `json:"rowCount"`
	ColumnCount           int            `json:"columnCount"`
	Columns               []ColumnReport `json:"columns"`
	DuplicateRows         int            `json:"duplicateRows"`
	DuplicateFraction     float64        `json:"duplicateFraction"`
	TypeFlags             []TypeFlag     `json:"typeFlags"`
	SuspiciousDateColumns []string       `json:"suspiciousDateColumns"`
	FailureReasons        []string       `json:"failureReasons"`
	Pass                  bool           `json:"pass"`
}

// Column returns the report for the named column.
func (result *Result) Column(name string) (ColumnReport, bool) {
	for _, column := range result.Columns {
		if column.Name == name {
			return column, true
		}
	}
	return ColumnReport{}, false
}

// TotalMissing returns the number of missing cells across all columns.
func (result *Result) TotalMissing() int {
	total := 0
	for _, column := range result.Columns {
		total += column.MissingCount
	}
	return total
}

// Config holds the validation thresholds. A fraction strictly above a
// threshold fails validation.
type Config struct {
	// MaxMissingFraction is the per-column missing-value fraction limit.
	// Default: 0.5.
	MaxMissingFraction float64

	// MaxDuplicateFraction is the duplicate-row fraction limit. Default: 0.5.
	MaxDuplicateFraction float64
}

// Option configures an Agent.
type Option func(*Config)

// WithMaxMissingFraction overrides the missing-value threshold.
func WithMaxMissingFraction(fraction float64) Option {
	return func(config *Config) {
		config.MaxMissingFraction = fraction
	}
}

// WithMaxDuplicateFraction overrides the duplicate-row threshold.
func WithMaxDuplicateFraction(fraction float64) Option {
	return func(config *Config) {
		config.MaxDuplicateFraction = fraction
	}
}

// Agent is the ValidationAgent.
type Agent struct {
	config Config
}

// New creates a ValidationAgent with the given options.
func New(opts ...Option) *Agent {
	config := Config{MaxMissingFraction: 0.5, MaxDuplicateFraction: 0.5}
	for _, opt := range opts {
		opt(&config)
	}
	return &Agent{config: config}
}

// Config returns the effective thresholds.
func (agent *Agent) Config() Config { return agent.config }

// Validate inspects ds and returns its validation result. The only errors
// are a nil dataset and a done context.
func (agent *Agent) Validate(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}

	result := &Result{
		RowCount:              ds.RowCount(),
		ColumnCount:           ds.ColumnCount(),
		Columns:               make([]ColumnReport, 0, ds.ColumnCount()),
		TypeFlags:             make([]TypeFlag, 0),
		SuspiciousDateColumns: make([]string, 0),
		FailureReasons:        make([]string, 0),
		Pass:                  true,
	}

	for _, column := range ds.Columns() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report, flag := agent.checkColumn(column, ds.RowCount())
		result.Columns = append(result.Columns, report)

		if flag != nil {
			result.TypeFlags = append(result.TypeFlags, *flag)
		}
		if report.MissingAboveThreshold {
			result.Pass = false
			result.FailureReasons = append(result.FailureReasons, fmt.Sprintf(
				"column %q missing fraction %.2f exceeds %.2f", report.Name, report.MissingFraction, agent.config.MaxMissingFraction))
		}
		if report.TypeMismatch {
			result.Pass = false
			result.FailureReasons = append(result.FailureReasons, fmt.Sprintf(
				"column %q declared %s but most values are %s", report.Name, column.Type().ExpectedKind(), report.MajorityKind))
		}
		if looksLikeDate(column.Name()) && column.Type() != dataset.TypeDatetime {
			result.SuspiciousDateColumns = append(result.SuspiciousDateColumns, column.Name())
		}
	}

	result.DuplicateRows = countDuplicateRows(ds)
	if result.RowCount > 0 {
		result.DuplicateFraction = float64(result.DuplicateRows) / float64(result.RowCount)
	}
	if result.DuplicateFraction > agent.config.MaxDuplicateFraction {
		result.Pass = false
		result.FailureReasons = append(result.FailureReasons, fmt.Sprintf(
			"duplicate-row fraction %.2f exceeds %.2f", result.DuplicateFraction, agent.config.MaxDuplicateFraction))
	}

	return result, nil
}

// checkColumn computes the per-column report and, when the column has a type
// problem, the flag describing it.
func (agent *Agent) checkColumn(column *dataset.Column, rowCount int) (ColumnReport, *TypeFlag) {
	report := ColumnReport{
		Name:         column.Name(),
		Type:         column.Type(),
		MissingCount: column.NullCount(),
		Pass:         true,
	}
	if rowCount > 0 {
		report.MissingFraction = float64(report.MissingCount) / float64(rowCount)
	}
	if report.MissingFraction > agent.config.MaxMissingFraction {
		report.MissingAboveThreshold = true
		report.Pass = false
	}

	nonNull := rowCount - report.MissingCount
	if nonNull == 0 {
		return report, nil
	}

	declared := column.Type().ExpectedKind()
	counts := dataset.CountKinds(column.Values())
	for _, kind := range []dataset.ValueKind{dataset.KindNumeric, dataset.KindDatetime, dataset.KindString} {
		if counts[kind]*2 > nonNull {
			report.MajorityKind = kind
		}
	}

	switch {
	case report.MajorityKind == "":
		report.TypeAmbiguous = true
		report.Pass = false
		return report, &TypeFlag{Column: column.Name(), Flag: FlagTypeAmbiguous, Declared: declared}
	case report.MajorityKind != declared:
		report.TypeMismatch = true
		report.Pass = false
		return report, &TypeFlag{Column: column.Name(), Flag: FlagTypeMismatch, Declared: declared, Observed: report.MajorityKind}
	}

	return report, nil
}

// countDuplicateRows counts rows identical to an earlier row.
func countDuplicateRows(ds *dataset.Dataset) int {
	seen := make(map[string]struct{}, ds.RowCount())
	duplicates := 0
	for row := 0; row < ds.RowCount(); row++ {
		key := ds.RowKey(row)
		if _, exists := seen[key]; exists {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

var dateNameTokens = map[string]struct{}{
	"date": {}, "published": {}, "issued": {}, "on": {}, "created": {},
	"timestamp": {}, "time": {}, "day": {}, "month": {}, "hour": {},
}

// looksLikeDate reports whether a column name contains a date-like word.
func looksLikeDate(name string) bool {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		if _, isDateWord := dateNameTokens[word]; isDateWord {
			return true
		}
	}
	return false
}
