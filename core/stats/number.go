package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Number is a float that may be undefined (e.g. the standard deviation of a
// single value, or a correlation involving a constant column). Undefined
// numbers encode as JSON null instead of being omitted.
type Number struct {
	Value   float64
	Defined bool
}

// Defined wraps v, treating NaN and ±Inf as undefined.
func Defined(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Defined: true}
}

// Undefined is the explicit missing number.
func Undefined() Number { return Number{} }

// Float returns the value or NaN when undefined.
func (number Number) Float() float64 {
	if !number.Defined {
		return math.NaN()
	}
	return number.Value
}

// MarshalJSON encodes undefined numbers as null.
func (number Number) MarshalJSON() ([]byte, error) {
	if !number.Defined {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(number.Value, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null.
func (number *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*number = Number{}
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*number = Number{Value: value, Defined: true}
	return nil
}
