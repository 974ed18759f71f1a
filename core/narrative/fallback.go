package narrative

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Fallback renders templated text for every section from whatever inputs
// exist. Every section is marked degraded and none is empty.
func Fallback(input Input) *Text {
	return &Text{Sections: []SectionText{
		{Section: SectionOverview, Text: fallbackOverview(input), Degraded: true},
		{Section: SectionMissingData, Text: fallbackMissingData(input), Degraded: true},
		{Section: SectionOutliers, Text: fallbackOutliers(input), Degraded: true},
		{Section: SectionCorrelations, Text: fallbackCorrelations(input), Degraded: true},
	}}
}

func fallbackOverview(input Input) string {
	text := fmt.Sprintf("The dataset has %d rows and %d columns.", input.Meta.RowCount, input.Meta.ColumnCount)
	if len(input.Meta.Columns) > 0 {
		names := make([]string, len(input.Meta.Columns))
		for i, column := range input.Meta.Columns {
			names[i] = column.Name
		}
		text += " Columns: " + strings.Join(names, ", ") + "."
	}

	switch {
	case input.Validation == nil:
		text += " Validation results are unavailable."
	case input.Validation.Pass:
		text += " It passed validation."
	default:
		text += " It failed validation: " + strings.Join(input.Validation.FailureReasons, "; ") + "."
	}
	return text + " An automated narrative could not be generated."
}

func fallbackMissingData(input Input) string {
	result := input.Validation
	if result == nil {
		return "Validation results are unavailable; missing-data analysis could not be performed."
	}

	total := result.TotalMissing()
	text := "No missing values were found."
	if total > 0 {
		var columns []string
		for _, column := range result.Columns {
			if column.MissingCount > 0 {
				columns = append(columns, fmt.Sprintf("%s (%d)", column.Name, column.MissingCount))
			}
		}
		text = fmt.Sprintf("%d missing values in total: %s.", total, strings.Join(columns, ", "))
	}
	return text + fmt.Sprintf(" %d duplicate rows.", result.DuplicateRows)
}

func fallbackOutliers(input Input) string {
	if input.Summary == nil {
		return "Statistics are unavailable; outlier analysis could not be performed."
	}

	numeric := 0
	var flagged []string
	for _, column := range input.Summary.Columns {
		if column.Numeric == nil {
			continue
		}
		numeric++
		if column.Numeric.Outliers > 0 {
			flagged = append(flagged, fmt.Sprintf("%s (%d)", column.Name, column.Numeric.Outliers))
		}
	}

	if numeric == 0 {
		return "There are no numeric columns to check for outliers."
	}
	if len(flagged) == 0 {
		return fmt.Sprintf("No outliers were detected by the 1.5×IQR rule across %d numeric columns.", numeric)
	}
	return "Outliers by the 1.5×IQR rule: " + strings.Join(flagged, ", ") + "."
}

func fallbackCorrelations(input Input) string {
	if input.Summary == nil {
		return "Statistics are unavailable; correlations could not be computed."
	}

	matrix := input.Summary.Correlation
	if len(matrix.Columns) < 2 {
		return "Fewer than two numeric columns; there are no correlations to report."
	}

	bestI, bestJ := -1, -1
	best := 0.0
	undefined := 0
	for i := range matrix.Columns {
		for j := i + 1; j < len(matrix.Columns); j++ {
			value := matrix.Values[i][j]
			if !value.Defined {
				undefined++
				continue
			}
			if bestI < 0 || math.Abs(value.Value) > math.Abs(best) {
				bestI, bestJ, best = i, j, value.Value
			}
		}
	}

	if bestI < 0 {
		return "No correlation could be computed; every pair involves a constant column."
	}
	text := fmt.Sprintf("The strongest correlation is between %s and %s (r = %.2f).",
		matrix.Columns[bestI], matrix.Columns[bestJ], best)
	if undefined > 0 {
		text += fmt.Sprintf(" %d pairs are undefined because of constant columns.", undefined)
	}
	return text
}

// ErrNoModel is wrapped by Templated's degraded error.
var ErrNoModel = errors.New("narrative: no language model configured")

// Templated narrates without a language model: every section is fallback
// text and the error always wraps ErrDegraded.
type Templated struct{}

// Narrate returns Fallback(input).
func (Templated) Narrate(ctx context.Context, input Input) (*Text, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Fallback(input), fmt.Errorf("%w: %w", ErrDegraded, ErrNoModel)
}
