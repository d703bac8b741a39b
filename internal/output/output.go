// Package output renders statistics and frequency results.
//
// Supported formats:
//   - table: aligned text table (default)
//   - csv: header row plus one record per column
//   - json: a single JSON array of objects
//   - yaml: a YAML sequence of mappings
//   - parquet: one row group, for loading into analytics tools
//
// Table and CSV render the same display cells as Row.Cells; the structured
// formats carry typed values with null for statistics that do not apply.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ribbondz/rsv-sub000/internal/frequency"
	"github.com/ribbondz/rsv-sub000/internal/stats"
)

// Format names an output encoding.
type Format string

const (
	FormatTable   Format = "table"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

// ParseFormat accepts a format name case-insensitively. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatParquet:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Binary reports whether the format must not be written to a terminal.
func (f Format) Binary() bool { return f == FormatParquet }

// grid is the textual form shared by the table and CSV writers.
type grid struct {
	header []string
	rows   [][]string
}

// WriteStats renders the rows of a finalized set.
func WriteStats(w io.Writer, f Format, set *stats.Set, withMedian bool) error {
	rows := set.Rows()
	switch f {
	case FormatTable, FormatCSV:
		h := set.Header()
		if n := len(h); n > 0 && h[n-1] == "median" {
			h = h[:n-1]
		}
		if withMedian {
			h = append(h, "median")
		}
		g := grid{header: h}
		for _, r := range rows {
			g.rows = append(g.rows, r.Cells(withMedian))
		}
		return writeGrid(w, f, g)
	}
	recs := make([]StatsRecord, len(rows))
	for i, r := range rows {
		recs[i] = NewStatsRecord(r, withMedian)
	}
	return writeRecords(w, f, recs)
}

// WriteFrequency renders frequency entries. names label the selected columns.
func WriteFrequency(w io.Writer, f Format, names []string, entries []frequency.Entry) error {
	switch f {
	case FormatTable, FormatCSV:
		g := grid{header: append(append([]string{}, names...), "count")}
		for _, e := range entries {
			row := append(append([]string{}, e.Values...), fmt.Sprint(e.Count))
			g.rows = append(g.rows, row)
		}
		return writeGrid(w, f, g)
	}
	recs := make([]FrequencyRecord, len(entries))
	for i, e := range entries {
		recs[i] = FrequencyRecord{Columns: names, Values: e.Values, Count: e.Count}
	}
	return writeRecords(w, f, recs)
}

// writeRecords dispatches the structured formats.
func writeRecords[T any](w io.Writer, f Format, recs []T) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, recs)
	case FormatYAML:
		return writeYAML(w, recs)
	case FormatParquet:
		return writeParquet(w, recs)
	}
	return fmt.Errorf("unknown output format %q", f)
}

func writeGrid(w io.Writer, f Format, g grid) error {
	if f == FormatCSV {
		return writeCSV(w, g)
	}
	return writeTable(w, g)
}
