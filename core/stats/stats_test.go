package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/leofalp/edaflow/core/dataset"
)

func mustDataset(t *testing.T, columns ...*dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(columns...)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return ds
}

func floatsOf(values ...float64) []any {
	converted := make([]any, len(values))
	for index, value := range values {
		converted[index] = value
	}
	return converted
}

func assertClose(t *testing.T, label string, got Number, want float64) {
	t.Helper()
	if !got.Defined {
		t.Errorf("%s: expected %v, got undefined", label, want)
		return
	}
	if math.Abs(got.Value-want) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", label, want, got.Value)
	}
}

func TestSummarize_NumericDescriptives(t *testing.T) {
	values := floatsOf(1, 2, 3, 4, 5)
	values = append(values, nil)
	ds := mustDataset(t, dataset.NewColumn("x", dataset.TypeNumeric, values))

	summary, err := New().Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	column, found := summary.Column("x")
	if !found || column.Numeric == nil {
		t.Fatalf("expected numeric summary for x, got %+v", column)
	}
	if column.Count != 5 || column.Missing != 1 {
		t.Errorf("expected count 5 and missing 1, got %d and %d", column.Count, column.Missing)
	}
	assertClose(t, "mean", column.Numeric.Mean, 3)
	assertClose(t, "std", column.Numeric.Std, math.Sqrt(2.5))
	assertClose(t, "min", column.Numeric.Min, 1)
	assertClose(t, "q1", column.Numeric.Q1, 2)
	assertClose(t, "median", column.Numeric.Median, 3)
	assertClose(t, "q3", column.Numeric.Q3, 4)
	assertClose(t, "max", column.Numeric.Max, 5)
	if column.Numeric.Outliers != 0 {
		t.Errorf("expected no outliers, got %d", column.Numeric.Outliers)
	}
}

func TestSummarize_SingleValueHasUndefinedStd(t *testing.T) {
	ds := mustDataset(t, dataset.NewColumn("x", dataset.TypeNumeric, floatsOf(7)))

	summary, err := New().Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	column, _ := summary.Column("x")
	if column.Numeric.Std.Defined {
		t.Errorf("expected undefined std for a single value, got %v", column.Numeric.Std.Value)
	}
	assertClose(t, "median", column.Numeric.Median, 7)
}

func TestCountOutliers_UsesIQRFences(t *testing.T) {
	if got := CountOutliers([]float64{1, 2, 3, 4, 100}); got != 1 {
		t.Errorf("expected 1 outlier, got %d", got)
	}
	if got := CountOutliers(nil); got != 0 {
		t.Errorf("expected 0 outliers for empty input, got %d", got)
	}
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	testCases := []struct {
		probability float64
		expected    float64
	}{
		{0, 10},
		{0.25, 17.5},
		{0.5, 25},
		{0.75, 32.5},
		{1, 40},
	}
	for _, quantileCase := range testCases {
		if got := Quantile(sorted, quantileCase.probability); math.Abs(got-quantileCase.expected) > 1e-9 {
			t.Errorf("Quantile(%v): expected %v, got %v", quantileCase.probability, quantileCase.expected, got)
		}
	}
	if !math.IsNaN(Quantile(nil, 0.5)) {
		t.Errorf("expected NaN for empty input")
	}
}

func TestSummarize_CorrelationMatrixForTwoColumns(t *testing.T) {
	ds := mustDataset(t,
		dataset.NewColumn("a", dataset.TypeNumeric, floatsOf(1, 2, 3, 4)),
		dataset.NewColumn("b", dataset.TypeNumeric, floatsOf(2, 4, 6, 8)),
	)

	summary, err := New().Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matrix := summary.Correlation
	if len(matrix.Columns) != 2 || len(matrix.Values) != 2 || len(matrix.Values[0]) != 2 {
		t.Fatalf("expected a 2x2 matrix, got %+v", matrix)
	}
	assertClose(t, "a/a", matrix.Values[0][0], 1)
	assertClose(t, "b/b", matrix.Values[1][1], 1)
	assertClose(t, "a/b", matrix.Values[0][1], 1)
	if matrix.Values[0][1] != matrix.Values[1][0] {
		t.Errorf("expected symmetric matrix, got %+v", matrix.Values)
	}
}

func TestSummarize_CorrelationOverIntegerColumns(t *testing.T) {
	ds := mustDataset(t,
		dataset.NewColumn("a", dataset.TypeNumeric, []any{1, 2, 3, 4}),
		dataset.NewColumn("b", dataset.TypeNumeric, []any{int64(8), int64(6), int64(4), int64(2)}),
	)

	summary, err := New().Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matrix := summary.Correlation
	assertClose(t, "a/a", matrix.Values[0][0], 1)
	assertClose(t, "b/b", matrix.Values[1][1], 1)
	assertClose(t, "a/b", matrix.Values[0][1], -1)
}

func TestSummarize_ZeroVarianceYieldsUndefinedEntries(t *testing.T) {
	ds := mustDataset(t,
		dataset.NewColumn("a", dataset.TypeNumeric, floatsOf(1, 2, 3, 4)),
		dataset.NewColumn("flat", dataset.TypeNumeric, floatsOf(5, 5, 5, 5)),
	)

	summary, err := New().Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, pair := range [][2]string{{"a", "flat"}, {"flat", "a"}, {"flat", "flat"}} {
		coefficient, found := summary.Correlation.At(pair[0], pair[1])
		if !found {
			t.Fatalf("missing entry %v", pair)
		}
		if coefficient.Defined {
			t.Errorf("expected undefined coefficient for %v, got %v", pair, coefficient.Value)
		}
	}

	encoded, err := json.Marshal(summary.Correlation)
	if err != nil {
		t.Fatalf("failed to encode matrix: %v", err)
	}
	if !bytes.Contains(encoded, []byte("null")) {
		t.Errorf("expected explicit null entries in %s", encoded)
	}
}

func TestSummarize_NoNumericColumnsYieldsEmptyMatrix(t *testing.T) {
	ds := mustDataset(t,
		dataset.NewColumn("city", dataset.TypeCategorical, []any{"rome", "oslo", "rome"}),
	)

	summary, err := New().Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Correlation.Columns) != 0 || len(summary.Correlation.Values) != 0 {
		t.Errorf("expected an empty matrix, got %+v", summary.Correlation)
	}
}

func TestSummarize_CategoricalTopValuesOrdering(t *testing.T) {
	values := []any{"b", "a", "c", "a", "b", "d", "e", "f", nil}
	ds := mustDataset(t, dataset.NewColumn("letter", dataset.TypeCategorical, values))

	summary, err := New(WithTopValues(3)).Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	column, _ := summary.Column("letter")
	if column.Categorical == nil {
		t.Fatalf("expected categorical stats")
	}
	if column.Categorical.Cardinality != 6 {
		t.Errorf("expected cardinality 6, got %d", column.Categorical.Cardinality)
	}
	expected := []ValueCount{{"a", 2}, {"b", 2}, {"c", 1}}
	if len(column.Categorical.TopValues) != len(expected) {
		t.Fatalf("expected %d top values, got %+v", len(expected), column.Categorical.TopValues)
	}
	for index, want := range expected {
		if column.Categorical.TopValues[index] != want {
			t.Errorf("top value %d: expected %+v, got %+v", index, want, column.Categorical.TopValues[index])
		}
	}
}

func TestSummarize_DatetimeRange(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	ds := mustDataset(t,
		dataset.NewColumn("seen", dataset.TypeDatetime, []any{last, nil, first}),
	)

	summary, err := New().Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	column, _ := summary.Column("seen")
	if column.Datetime == nil || column.Datetime.Earliest == nil || column.Datetime.Latest == nil {
		t.Fatalf("expected datetime range, got %+v", column)
	}
	if !column.Datetime.Earliest.Equal(first) || !column.Datetime.Latest.Equal(last) {
		t.Errorf("unexpected range %v..%v", column.Datetime.Earliest, column.Datetime.Latest)
	}
}

func TestSummarize_IsIdempotent(t *testing.T) {
	ds := mustDataset(t,
		dataset.NewColumn("a", dataset.TypeNumeric, floatsOf(3, 1, 4, 1, 5, 9)),
		dataset.NewColumn("b", dataset.TypeNumeric, floatsOf(2, 7, 1, 8, 2, 8)),
		dataset.NewColumn("tag", dataset.TypeCategorical, []any{"x", "y", "x", "z", "x", "y"}),
	)
	agent := New()

	first, err := agent.Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := agent.Summarize(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Errorf("expected identical summaries:\n%s\n%s", firstJSON, secondJSON)
	}
}

func TestSummarize_CancelledContext(t *testing.T) {
	ds := mustDataset(t, dataset.NewColumn("a", dataset.TypeNumeric, floatsOf(1, 2)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Summarize(ctx, ds)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNumber_JSONRoundTrip(t *testing.T) {
	encoded, err := json.Marshal([]Number{Defined(0.5), Undefined(), Defined(math.NaN())})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(encoded) != "[0.5,null,null]" {
		t.Errorf("unexpected encoding %s", encoded)
	}

	var decoded []Number
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decoded[0].Defined || decoded[0].Value != 0.5 || decoded[1].Defined {
		t.Errorf("unexpected decoded values %+v", decoded)
	}
}
