package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leofalp/edaflow/core/dataset"
	"github.com/leofalp/edaflow/core/stats"
	"github.com/leofalp/edaflow/core/validation"
	"github.com/leofalp/edaflow/core/viz"
)

// SystemPrompt is the persona sent with every narrative request.
const SystemPrompt = "You are an expert data scientist specialized in EDA and data insights."

// Unavailable marks an input whose stage produced no output.
const Unavailable = "unavailable"

// BuildPrompt renders input into the user prompt. Absent inputs are listed
// as unavailable so the model does not invent them.
func BuildPrompt(input Input, wordLimit int) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Based on the following EDA results, write a concise narrative in %d words or less in total.\n\n", wordLimit)

	writeMeta(&builder, input.Meta)
	writeValidation(&builder, input.Validation)
	writeSummary(&builder, input.Summary)
	writeVisualizations(&builder, input.Visualizations)

	keys := make([]string, len(Sections))
	for i, section := range Sections {
		keys[i] = strconv.Quote(string(section))
	}

	builder.WriteString("Respond with a single JSON object whose keys are ")
	builder.WriteString(strings.Join(keys, ", "))
	builder.WriteString(".\n")
	builder.WriteString("Each value is a string of HTML bullet points (<ul><li>...</li></ul>) covering:\n")
	fmt.Fprintf(&builder, "- %s: trends and patterns in the data, and suggested next steps.\n", SectionOverview)
	fmt.Fprintf(&builder, "- %s: missing values, duplicates and other data quality issues.\n", SectionMissingData)
	fmt.Fprintf(&builder, "- %s: potential outliers and anomalies.\n", SectionOutliers)
	fmt.Fprintf(&builder, "- %s: notable relationships between numeric columns.\n", SectionCorrelations)
	builder.WriteString("If an input is unavailable, say so in the affected section instead of guessing.\n")

	return builder.String()
}

func writeMeta(builder *strings.Builder, meta dataset.Meta) {
	fmt.Fprintf(builder, "Dataset: %d rows, %d columns.\n", meta.RowCount, meta.ColumnCount)
	for _, column := range meta.Columns {
		fmt.Fprintf(builder, "- %s (%s)\n", column.Name, column.Type)
	}
	builder.WriteString("\n")
}

func writeValidation(builder *strings.Builder, result *validation.Result) {
	if result == nil {
		builder.WriteString("Validation: " + Unavailable + "\n\n")
		return
	}

	fmt.Fprintf(builder, "Validation: pass=%t, duplicate rows=%d (%s).\n",
		result.Pass, result.DuplicateRows, percent(result.DuplicateFraction))
	for _, column := range result.Columns {
		if column.MissingCount == 0 && column.Pass {
			continue
		}
		fmt.Fprintf(builder, "- %s: missing=%d (%s), pass=%t\n",
			column.Name, column.MissingCount, percent(column.MissingFraction), column.Pass)
	}
	for _, flag := range result.TypeFlags {
		fmt.Fprintf(builder, "- %s: %s (declared %s, observed %s)\n", flag.Column, flag.Flag, flag.Declared, flag.Observed)
	}
	if len(result.SuspiciousDateColumns) > 0 {
		fmt.Fprintf(builder, "- date-like columns not parsed as dates: %s\n", strings.Join(result.SuspiciousDateColumns, ", "))
	}
	builder.WriteString("\n")
}

func writeSummary(builder *strings.Builder, summary *stats.Summary) {
	if summary == nil {
		builder.WriteString("Statistics: " + Unavailable + "\n\n")
		return
	}

	builder.WriteString("Statistics:\n")
	for _, column := range summary.Columns {
		switch {
		case column.Numeric != nil:
			numeric := column.Numeric
			fmt.Fprintf(builder, "- %s: count=%d missing=%d mean=%s std=%s min=%s q1=%s median=%s q3=%s max=%s outliers=%d\n",
				column.Name, column.Count, column.Missing,
				formatNumber(numeric.Mean), formatNumber(numeric.Std), formatNumber(numeric.Min),
				formatNumber(numeric.Q1), formatNumber(numeric.Median), formatNumber(numeric.Q3),
				formatNumber(numeric.Max), numeric.Outliers)
		case column.Categorical != nil:
			top := make([]string, len(column.Categorical.TopValues))
			for i, value := range column.Categorical.TopValues {
				top[i] = fmt.Sprintf("%s×%d", value.Value, value.Count)
			}
			fmt.Fprintf(builder, "- %s: count=%d missing=%d cardinality=%d top=[%s]\n",
				column.Name, column.Count, column.Missing, column.Categorical.Cardinality, strings.Join(top, ", "))
		case column.Datetime != nil && column.Datetime.Earliest != nil:
			fmt.Fprintf(builder, "- %s: count=%d missing=%d range=%s..%s\n",
				column.Name, column.Count, column.Missing,
				column.Datetime.Earliest.Format("2006-01-02"), column.Datetime.Latest.Format("2006-01-02"))
		default:
			fmt.Fprintf(builder, "- %s: count=%d missing=%d\n", column.Name, column.Count, column.Missing)
		}
	}

	matrix := summary.Correlation
	for i := range matrix.Columns {
		for j := i + 1; j < len(matrix.Columns); j++ {
			fmt.Fprintf(builder, "- corr(%s, %s) = %s\n", matrix.Columns[i], matrix.Columns[j], formatNumber(matrix.Values[i][j]))
		}
	}
	builder.WriteString("\n")
}

func writeVisualizations(builder *strings.Builder, spec *viz.Spec) {
	if spec == nil {
		builder.WriteString("Visualizations: " + Unavailable + "\n\n")
		return
	}

	fmt.Fprintf(builder, "Visualizations: %d plots, %d failed to render.\n", len(spec.Plots), len(spec.Failed()))
	for _, plot := range spec.Plots {
		fmt.Fprintf(builder, "- %s\n", plot.ID)
	}
	builder.WriteString("\n")
}

func formatNumber(number stats.Number) string {
	if !number.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(number.Value, 'g', 4, 64)
}

func percent(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', 1, 64) + "%"
}
