package stats

import (
	"gonum.org/v1/gonum/stat"

	"github.com/leofalp/edaflow/core/dataset"
)

// correlate builds the Pearson matrix over numeric columns using
// pairwise-complete observations. Entries involving a column with zero
// variance (or fewer than two paired observations) are undefined, including
// on the diagonal.
func correlate(columns []*dataset.Column) CorrelationMatrix {
	matrix := CorrelationMatrix{
		Columns: make([]string, len(columns)),
		Values:  make([][]Number, len(columns)),
	}

	for index, column := range columns {
		matrix.Columns[index] = column.Name()
		matrix.Values[index] = make([]Number, len(columns))
	}

	for indexA := range columns {
		for indexB := indexA; indexB < len(columns); indexB++ {
			coefficient := pairwiseCorrelation(columns[indexA], columns[indexB])
			matrix.Values[indexA][indexB] = coefficient
			matrix.Values[indexB][indexA] = coefficient
		}
	}

	return matrix
}

func pairwiseCorrelation(columnA, columnB *dataset.Column) Number {
	xs := make([]float64, 0, columnA.Len())
	ys := make([]float64, 0, columnA.Len())
	for row := 0; row < columnA.Len(); row++ {
		x, xOK := columnA.FloatAt(row)
		y, yOK := columnB.FloatAt(row)
		if xOK && yOK {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}

	if len(xs) < 2 || isConstant(xs) || isConstant(ys) {
		return Undefined()
	}
	if columnA == columnB {
		return Defined(1.0)
	}
	return Defined(stat.Correlation(xs, ys, nil))
}

func isConstant(values []float64) bool {
	for _, value := range values[1:] {
		if value != values[0] {
			return false
		}
	}
	return true
}
