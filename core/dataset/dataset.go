package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the type tag inferred for a whole column.
type ColumnType string

const (
	// TypeNumeric marks columns holding float64 values.
	TypeNumeric ColumnType = "numeric"

	// TypeCategorical marks low-cardinality string columns.
	TypeCategorical ColumnType = "categorical"

	// TypeDatetime marks columns holding time.Time values.
	TypeDatetime ColumnType = "datetime"

	// TypeText marks high-cardinality free-text string columns.
	TypeText ColumnType = "text"
)

// ValueKind classifies a single non-null cell.
type ValueKind string

const (
	KindNumeric  ValueKind = "numeric"
	KindDatetime ValueKind = "datetime"
	KindString   ValueKind = "string"
)

// ExpectedKind returns the value kind a column of this type should hold.
// Categorical and text columns both expect strings.
func (columnType ColumnType) ExpectedKind() ValueKind {
	switch columnType {
	case TypeNumeric:
		return KindNumeric
	case TypeDatetime:
		return KindDatetime
	default:
		return KindString
	}
}

// KindOf classifies a cell value. It returns false for nil.
func KindOf(value any) (ValueKind, bool) {
	switch value.(type) {
	case nil:
		return "", false
	case float64, float32, int, int64, int32:
		return KindNumeric, true
	case time.Time:
		return KindDatetime, true
	default:
		return KindString, true
	}
}

var (
	// ErrEmptyColumnName is returned when a column has no name.
	ErrEmptyColumnName = errors.New("dataset: column name must not be empty")

	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("dataset: duplicate column name")

	// ErrRaggedColumns is returned when columns have different lengths.
	ErrRaggedColumns = errors.New("dataset: columns have different lengths")
)

// Column is a named, typed sequence of nullable values.
type Column struct {
	name       string
	columnType ColumnType
	values     []any
}

// NewColumn creates a column from already typed values. The slice is copied.
func NewColumn(name string, columnType ColumnType, values []any) *Column {
	copied := make([]any, len(values))
	copy(copied, values)
	return &Column{name: name, columnType: columnType, values: copied}
}

// Name returns the column name.
func (column *Column) Name() string { return column.name }

// Type returns the inferred column type.
func (column *Column) Type() ColumnType { return column.columnType }

// Len returns the number of cells, nulls included.
func (column *Column) Len() int { return len(column.values) }

// At returns the value at row index i (nil when missing).
func (column *Column) At(i int) any { return column.values[i] }

// Values returns a copy of the column values.
func (column *Column) Values() []any {
	copied := make([]any, len(column.values))
	copy(copied, column.values)
	return copied
}

// NullCount returns the number of missing cells.
func (column *Column) NullCount() int {
	nulls := 0
	for _, value := range column.values {
		if value == nil {
			nulls++
		}
	}
	return nulls
}

// FloatAt returns row i as a float64 when the cell holds any numeric value.
func (column *Column) FloatAt(i int) (float64, bool) {
	return toFloat(column.values[i])
}

// Floats returns the non-null numeric values of the column in row order.
// Non-numeric cells are ignored.
func (column *Column) Floats() []float64 {
	floats := make([]float64, 0, len(column.values))
	for _, value := range column.values {
		if number, ok := toFloat(value); ok {
			floats = append(floats, number)
		}
	}
	return floats
}

// Dataset is an immutable ordered collection of columns.
type Dataset struct {
	columns  []*Column
	byName   map[string]*Column
	rowCount int
}

// New validates and assembles a Dataset. Column names must be non-empty and
// unique, and every column must have the same length.
func New(columns ...*Column) (*Dataset, error) {
	byName := make(map[string]*Column, len(columns))
	rowCount := 0

	for index, column := range columns {
		if column == nil || column.name == "" {
			return nil, fmt.Errorf("%w (position %d)", ErrEmptyColumnName, index)
		}
		if _, exists := byName[column.name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, column.name)
		}
		if index == 0 {
			rowCount = column.Len()
		} else if column.Len() != rowCount {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrRaggedColumns, column.name, column.Len(), rowCount)
		}
		byName[column.name] = column
	}

	ordered := make([]*Column, len(columns))
	copy(ordered, columns)

	return &Dataset{columns: ordered, byName: byName, rowCount: rowCount}, nil
}

// RowCount returns the number of rows.
func (ds *Dataset) RowCount() int { return ds.rowCount }

// ColumnCount returns the number of columns.
func (ds *Dataset) ColumnCount() int { return len(ds.columns) }

// Columns returns the columns in dataset order.
func (ds *Dataset) Columns() []*Column {
	ordered := make([]*Column, len(ds.columns))
	copy(ordered, ds.columns)
	return ordered
}

// Column looks up a column by name.
func (ds *Dataset) Column(name string) (*Column, bool) {
	column, exists := ds.byName[name]
	return column, exists
}

// NumericColumns returns the numeric columns in dataset order.
func (ds *Dataset) NumericColumns() []*Column {
	numeric := make([]*Column, 0, len(ds.columns))
	for _, column := range ds.columns {
		if column.columnType == TypeNumeric {
			numeric = append(numeric, column)
		}
	}
	return numeric
}

// RowKey returns a canonical encoding of row i. Two rows are duplicates
// exactly when their keys are equal. Each cell is length-prefixed so no
// cell content can imitate a cell boundary.
func (ds *Dataset) RowKey(i int) string {
	var builder strings.Builder
	for _, column := range ds.columns {
		cell := FormatValue(column.values[i])
		builder.WriteString(strconv.Itoa(len(cell)))
		builder.WriteByte(':')
		builder.WriteString(cell)
	}
	return builder.String()
}

// FormatValue renders a cell value as a stable string. Missing cells render
// as "\x00" so they never collide with an empty string.
func FormatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return "\x00"
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(time.RFC3339Nano)
	default:
		if number, ok := toFloat(value); ok {
			return strconv.FormatFloat(number, 'g', -1, 64)
		}
		return fmt.Sprint(value)
	}
}

// ColumnMeta describes a column without its values.
type ColumnMeta struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Meta is the value-free description of a Dataset.
type Meta struct {
	RowCount    int          `json:"rowCount"`
	ColumnCount int          `json:"columnCount"`
	Columns     []ColumnMeta `json:"columns"`
}

// Meta returns the dataset shape and column types.
func (ds *Dataset) Meta() Meta {
	columns := make([]ColumnMeta, 0, len(ds.columns))
	for _, column := range ds.columns {
		columns = append(columns, ColumnMeta{Name: column.name, Type: column.columnType})
	}
	return Meta{RowCount: ds.rowCount, ColumnCount: len(ds.columns), Columns: columns}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	default:
		return 0, false
	}
}
