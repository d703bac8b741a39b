package stats

import (
	csvparser "github.com/ribbondz/rsv-sub000/internal/parser/csv"
)

// DefaultSampleRows is the number of data rows inspected by Infer when the
// caller does not say otherwise.
const DefaultSampleRows = 5000

// Infer guesses an initial type for each selected column from a sample of
// data lines (header excluded). Every column starts at Null and widens with
// each non-null value; lines too short for the largest selected index are
// ignored, as they are during the full pass.
//
// At most limit lines are inspected; limit <= 0 means DefaultSampleRows. The
// result is a starting point only: Column.Parse keeps widening as needed.
func Infer(lines []string, indices []int, sep, quote byte, limit int) []ColumnType {
	if limit <= 0 {
		limit = DefaultSampleRows
	}
	types := make([]ColumnType, len(indices))
	maxIndex := -1
	for _, idx := range indices {
		maxIndex = max(maxIndex, idx)
	}

	var fields []string
	for i, line := range lines {
		if i >= limit {
			break
		}
		fields = csvparser.Split(fields, line, sep, quote)
		if len(fields) <= maxIndex {
			continue
		}
		for j, idx := range indices {
			types[j] = types[j].Observe(fields[idx])
		}
	}
	return types
}

// ApplyHints overrides inferred types with explicit per-column hints keyed by
// source column index.
func ApplyHints(types []ColumnType, indices []int, hints map[int]ColumnType) {
	for j, idx := range indices {
		if t, ok := hints[idx]; ok && j < len(types) {
			types[j] = t
		}
	}
}
