package stats

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Set is the accumulator for one pass over a group of records: one Column per
// selected column plus the number of records accepted.
//
// Sets built from the same template (via Clone) share a layout and can be
// merged in any order with the same result.
type Set struct {
	cols     []*Column
	rows     int64
	skipped  int64
	maxIndex int
	median   bool
}

// Layout describes the selected columns of a Set. Indices, Names and Types
// are parallel slices; Types may be shorter, missing entries default to Null.
type Layout struct {
	Indices []int
	Names   []string
	Types   []ColumnType
	// Median enables an approximate median per column.
	Median bool
}

// NewSet returns an empty set with the given layout. It is meant to be built
// once as a template and cloned for every chunk.
func NewSet(l Layout) (*Set, error) {
	if len(l.Names) != len(l.Indices) {
		return nil, fmt.Errorf("stats: %d names for %d columns", len(l.Names), len(l.Indices))
	}
	s := &Set{maxIndex: -1, median: l.Median}
	for i, idx := range l.Indices {
		if idx < 0 {
			return nil, fmt.Errorf("stats: negative column index %d", idx)
		}
		t := Null
		if i < len(l.Types) {
			t = l.Types[i]
		}
		c := NewColumn(idx, l.Names[i], t)
		if l.Median {
			c.enableMedian()
		}
		s.cols = append(s.cols, c)
		s.maxIndex = max(s.maxIndex, idx)
	}
	return s, nil
}

// Clone returns a deep copy of s. Cloning the zeroed template gives each
// worker an exclusively owned accumulator.
func (s *Set) Clone() *Set {
	cp := &Set{
		cols:     make([]*Column, len(s.cols)),
		rows:     s.rows,
		skipped:  s.skipped,
		maxIndex: s.maxIndex,
		median:   s.median,
	}
	for i, c := range s.cols {
		cp.cols[i] = c.clone()
	}
	return cp
}

// Columns returns the column accumulators in selection order.
func (s *Set) Columns() []*Column { return s.cols }

// RowCount is the number of records accepted so far.
func (s *Set) RowCount() int64 { return s.rows }

// Skipped is the number of records rejected for having too few fields.
func (s *Set) Skipped() int64 { return s.skipped }

// MaxIndex is the largest selected column index, or -1 for an empty layout.
func (s *Set) MaxIndex() int { return s.maxIndex }

// Accept folds one tokenized record into the set. A record that does not
// reach the largest selected index is rejected: it is counted as skipped and
// does not contribute to the row count. Accept reports whether the record
// was used.
func (s *Set) Accept(fields []string) bool {
	if len(fields) <= s.maxIndex {
		s.skipped++
		return false
	}
	s.rows++
	for _, c := range s.cols {
		c.Parse(fields[c.Index])
	}
	return true
}

// Merge folds other into s. Both sets must come from the same template.
// other must not be used afterwards.
func (s *Set) Merge(other *Set) error {
	if len(other.cols) != len(s.cols) {
		return fmt.Errorf("stats: merge of %d columns into %d", len(other.cols), len(s.cols))
	}
	for i, c := range s.cols {
		if o := other.cols[i]; o.Index != c.Index {
			return fmt.Errorf("stats: merge column %d has index %d, want %d", i, o.Index, c.Index)
		}
	}
	s.rows += other.rows
	s.skipped += other.skipped
	for i, c := range s.cols {
		c.merge(other.cols[i])
	}
	return nil
}

// Finalize computes unique counts and means. Further Accept or Merge calls
// after Finalize are not meaningful.
func (s *Set) Finalize() {
	for _, c := range s.cols {
		c.finalize(s.rows)
	}
}

// Row is the finalized, display-ready statistics of one column.
type Row struct {
	Index     int
	Type      ColumnType
	Name      string
	Min       float64
	Max       float64
	MinString string
	MaxString string
	Mean      float64
	Unique    int
	Nulls     int64
	Total     float64
	Median    float64
	HasMedian bool

	numericSeen bool
}

// Rows returns one Row per column. Finalize is called if it has not been.
func (s *Set) Rows() []Row {
	s.Finalize()
	out := make([]Row, 0, len(s.cols))
	for _, c := range s.cols {
		r := Row{
			Index:     c.Index,
			Type:      c.Type,
			Name:      c.Name,
			MinString: c.minStr,
			MaxString: c.maxStr,
			Mean:      c.mean,
			Unique:    c.uniqueCount,
			Nulls:     c.nulls,
			Total:     c.total.Value(),
		}
		switch {
		case c.Type == String:
			// Numeric statistics of a String column only cover the values
			// seen before it widened, which depends on chunking.
			r.Total = 0
		case c.min <= c.max:
			r.Min, r.Max = c.min, c.max
			r.numericSeen = true
		}
		if s.median && c.Type.Numeric() {
			r.Median, r.HasMedian = c.Median()
		}
		out = append(out, r)
	}
	return out
}

// Header returns the column titles matching Row.Cells.
func (s *Set) Header() []string {
	h := slices.Clone(baseHeader)
	if s.median {
		h = append(h, "median")
	}
	return h
}

var baseHeader = []string{
	"col", "type", "name", "min", "max", "min_string", "max_string",
	"mean", "unique", "null", "total",
}

// notApplicable is shown for statistics that do not apply to a column type.
const notApplicable = "-"

// Cells renders r in Header order. Numeric statistics of String columns and
// string statistics of other columns show "-"; numeric min/max that were never
// set show 0. withMedian appends the median cell.
func (r Row) Cells(withMedian bool) []string {
	cells := []string{
		strconv.Itoa(r.Index),
		r.Type.String(),
		r.Name,
	}
	if r.Type == String {
		cells = append(cells, notApplicable, notApplicable, orDash(r.MinString), orDash(r.MaxString),
			notApplicable)
	} else {
		cells = append(cells, FormatNumber(r.Min), FormatNumber(r.Max), notApplicable, notApplicable,
			FormatNumber(r.Mean))
	}
	cells = append(cells, strconv.Itoa(r.Unique), strconv.FormatInt(r.Nulls, 10))
	if r.Type == String {
		cells = append(cells, notApplicable)
	} else {
		cells = append(cells, FormatNumber(r.Total))
	}
	if withMedian {
		if r.HasMedian {
			cells = append(cells, FormatNumber(r.Median))
		} else {
			cells = append(cells, notApplicable)
		}
	}
	return cells
}

// NumericSeen reports whether the column received at least one numeric value.
func (r Row) NumericSeen() bool { return r.numericSeen }

// FormatNumber renders f in plain decimal notation with the fewest digits
// that round-trip.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return notApplicable
	}
	return s
}

// Digest returns a 64-bit fingerprint of the finalized statistics, suitable
// for checking that two runs over the same input agree.
func (s *Set) Digest() uint64 {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(s.rows, 10))
	b.WriteByte('\n')
	for _, r := range s.Rows() {
		for i, cell := range r.Cells(s.median) {
			if i > 0 {
				b.WriteByte(0x1f)
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
	return xxh3.HashString(b.String())
}
