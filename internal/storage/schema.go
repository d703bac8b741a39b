package storage

// ColumnKind is the portable type of an export column. Backends map it to
// their own SQL types.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInt
	KindFloat
	KindTime
)

// Column describes one column of the export table.
type Column struct {
	Name     string
	Kind     ColumnKind
	Nullable bool
}

// StatsColumns is the layout of the statistics export table, in CopyFrom
// order.
var StatsColumns = []Column{
	{Name: "run_id", Kind: KindText},
	{Name: "source", Kind: KindText},
	{Name: "created_at", Kind: KindTime},
	{Name: "row_count", Kind: KindInt},
	{Name: "col", Kind: KindInt},
	{Name: "col_type", Kind: KindText},
	{Name: "col_name", Kind: KindText},
	{Name: "min_value", Kind: KindFloat, Nullable: true},
	{Name: "max_value", Kind: KindFloat, Nullable: true},
	{Name: "min_string", Kind: KindText, Nullable: true},
	{Name: "max_string", Kind: KindText, Nullable: true},
	{Name: "mean", Kind: KindFloat, Nullable: true},
	{Name: "unique_count", Kind: KindInt},
	{Name: "null_count", Kind: KindInt},
	{Name: "total", Kind: KindFloat, Nullable: true},
	{Name: "median", Kind: KindFloat, Nullable: true},
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
