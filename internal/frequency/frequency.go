// Package frequency counts how often each combination of values occurs in a
// set of selected columns. Tables built from disjoint chunks merge by adding
// counts, so the result does not depend on chunking.
package frequency

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	csvparser "github.com/ribbondz/rsv-sub000/internal/parser/csv"
	"github.com/ribbondz/rsv-sub000/internal/pipeline"
)

// keySep joins the values of one combination into a map key.
const keySep = "\x00"

// Table maps value combinations to their counts.
type Table struct {
	indices  []int
	maxIndex int
	counts   map[string]int64
	rows     int64
	skipped  int64
}

// Entry is one value combination and how often it occurred.
type Entry struct {
	Values []string
	Count  int64
}

// New returns an empty table over the given column indices.
func New(indices []int) *Table {
	m := -1
	for _, i := range indices {
		m = max(m, i)
	}
	return &Table{
		indices:  slices.Clone(indices),
		maxIndex: m,
		counts:   make(map[string]int64),
	}
}

// Accept counts one tokenized record. Records too short for the selection are
// rejected and counted as skipped.
func (t *Table) Accept(fields []string) bool {
	if len(fields) <= t.maxIndex {
		t.skipped++
		return false
	}
	t.rows++
	if len(t.indices) == 1 {
		t.counts[fields[t.indices[0]]]++
		return true
	}
	var b strings.Builder
	for i, idx := range t.indices {
		if i > 0 {
			b.WriteString(keySep)
		}
		b.WriteString(fields[idx])
	}
	t.counts[b.String()]++
	return true
}

// Merge adds the counts of o to t. o must not be used afterwards.
func (t *Table) Merge(o *Table) error {
	if !slices.Equal(t.indices, o.indices) {
		return fmt.Errorf("frequency: merge of columns %v into %v", o.indices, t.indices)
	}
	if len(o.counts) > len(t.counts) {
		t.counts, o.counts = o.counts, t.counts
	}
	for k, n := range o.counts {
		t.counts[k] += n
	}
	t.rows += o.rows
	t.skipped += o.skipped
	return nil
}

// Rows is the number of accepted records.
func (t *Table) Rows() int64 { return t.rows }

// Skipped is the number of rejected records.
func (t *Table) Skipped() int64 { return t.skipped }

// Len is the number of distinct combinations.
func (t *Table) Len() int { return len(t.counts) }

// Top returns the n most frequent combinations (all when n <= 0), or the n
// least frequent with ascending set. Ties are ordered by value so the output
// is deterministic.
func (t *Table) Top(n int, ascending bool) []Entry {
	keys := make([]string, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		c := cmp.Compare(t.counts[b], t.counts[a])
		if ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if n > 0 && n < len(keys) {
		keys = keys[:n]
	}
	out := make([]Entry, len(keys))
	for i, k := range keys {
		vals := []string{k}
		if len(t.indices) > 1 {
			vals = strings.Split(k, keySep)
		}
		out[i] = Entry{Values: vals, Count: t.counts[k]}
	}
	return out
}

// Reduction returns the pipeline reduction that builds one table per chunk
// and merges them.
func Reduction(indices []int, sep, quote byte, diag *pipeline.Diagnostics) pipeline.Reduction[*Table] {
	return pipeline.Reduction[*Table]{
		New: func() *Table { return New(indices) },
		Process: func(acc *Table, c pipeline.Chunk) (*Table, error) {
			var fields []string
			for i, line := range c.Lines {
				fields = csvparser.Split(fields, line, sep, quote)
				if !acc.Accept(fields) {
					diag.Add(fmt.Sprintf("line %d: %d fields, need at least %d", c.First+int64(i), len(fields), acc.maxIndex+1))
				}
			}
			return acc, nil
		},
		Merge: func(dst, src *Table) (*Table, error) {
			return dst, dst.Merge(src)
		},
	}
}
