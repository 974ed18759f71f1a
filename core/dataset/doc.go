// Package dataset defines the immutable tabular input analysed by the EDA
// pipeline: an ordered set of uniquely named columns, each carrying an
// inferred type tag and a sequence of nullable values.
//
// Values are stored as:
//   - nil for a missing cell
//   - float64 for numeric cells
//   - time.Time for datetime cells
//   - string for categorical and free-text cells
//
// A Dataset exposes no mutators and every accessor returning a slice returns a
// copy, so agents can read it concurrently without synchronization.
//
// [InferColumn] converts raw string cells (as produced by a CSV or JSON
// parser) into a typed Column. Parsing the file itself is left to the caller.
package dataset
