package dataset

import (
	"strconv"
	"strings"
	"time"
)

// categoricalMaxDistinct is the distinct-value count at or below which a
// string column is always categorical.
const categoricalMaxDistinct = 20

// categoricalMaxRatio is the distinct/non-null ratio at or below which a
// string column is categorical.
const categoricalMaxRatio = 0.5

var nullTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseCell converts a raw cell into nil, float64, time.Time or string.
func ParseCell(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if _, isNull := nullTokens[strings.ToLower(trimmed)]; isNull {
		return nil
	}

	if number, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return number
	}

	for _, layout := range datetimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC()
		}
	}

	return trimmed
}

// InferColumn parses raw cells and tags the column with the kind held by the
// plurality of its non-null values. A minority of cells of another kind is
// kept as parsed so validation can flag the inconsistency. A column with no
// non-null values is tagged text.
func InferColumn(name string, raw []string) *Column {
	values := make([]any, len(raw))
	for index, cell := range raw {
		values[index] = ParseCell(cell)
	}

	return &Column{name: name, columnType: InferType(values), values: values}
}

// InferType picks the column type for already parsed values. Ties between
// kinds resolve in the order numeric, datetime, string.
func InferType(values []any) ColumnType {
	counts := CountKinds(values)

	best := KindString
	bestCount := -1
	for _, kind := range []ValueKind{KindNumeric, KindDatetime, KindString} {
		if counts[kind] > bestCount {
			best = kind
			bestCount = counts[kind]
		}
	}

	if bestCount <= 0 {
		return TypeText
	}

	switch best {
	case KindNumeric:
		return TypeNumeric
	case KindDatetime:
		return TypeDatetime
	}

	distinct := make(map[string]struct{})
	nonNull := 0
	for _, value := range values {
		if text, isString := value.(string); isString {
			distinct[text] = struct{}{}
			nonNull++
		}
	}
	if len(distinct) <= categoricalMaxDistinct || float64(len(distinct))/float64(nonNull) <= categoricalMaxRatio {
		return TypeCategorical
	}
	return TypeText
}

// CountKinds tallies non-null values by kind.
func CountKinds(values []any) map[ValueKind]int {
	counts := map[ValueKind]int{KindNumeric: 0, KindDatetime: 0, KindString: 0}
	for _, value := range values {
		if kind, ok := KindOf(value); ok {
			counts[kind]++
		}
	}
	return counts
}
