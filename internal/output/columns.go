package output

import (
	"io"
	"strconv"
)

// ColumnRecord describes one input column: its position, header name and,
// depending on the command, its inferred type or SQL-safe name.
type ColumnRecord struct {
	Index      int    `json:"col" yaml:"col" parquet:"col"`
	Name       string `json:"name" yaml:"name" parquet:"name"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty" parquet:"type,optional"`
	Normalized string `json:"normalized,omitempty" yaml:"normalized,omitempty" parquet:"normalized,optional"`
}

// WriteColumns renders column descriptions. The table and CSV forms only
// include the type and normalized columns when some record sets them.
func WriteColumns(w io.Writer, f Format, recs []ColumnRecord) error {
	switch f {
	case FormatTable, FormatCSV:
	default:
		return writeRecords(w, f, recs)
	}

	var withType, withNorm bool
	for _, r := range recs {
		withType = withType || r.Type != ""
		withNorm = withNorm || r.Normalized != ""
	}
	g := grid{header: []string{"col", "name"}}
	if withType {
		g.header = append(g.header, "type")
	}
	if withNorm {
		g.header = append(g.header, "normalized")
	}
	for _, r := range recs {
		row := []string{strconv.Itoa(r.Index), r.Name}
		if withType {
			row = append(row, r.Type)
		}
		if withNorm {
			row = append(row, r.Normalized)
		}
		g.rows = append(g.rows, row)
	}
	return writeGrid(w, f, g)
}
