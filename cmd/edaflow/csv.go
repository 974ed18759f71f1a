package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leofalp/edaflow/core/dataset"
)

// ErrNoHeader is returned for CSV input without a header row.
var ErrNoHeader = errors.New("csv input has no header row")

// readCSV builds a dataset from CSV with a header row. Column types are
// inferred per column; empty cells become nulls.
func readCSV(input io.Reader) (*dataset.Dataset, error) {
	reader := csv.NewReader(input)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cells := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		for index := range header {
			cells[index] = append(cells[index], record[index])
		}
	}

	columns := make([]*dataset.Column, len(header))
	for index, name := range header {
		columns[index] = dataset.InferColumn(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), cells[index])
	}
	return dataset.New(columns...)
}
