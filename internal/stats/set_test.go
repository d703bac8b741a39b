package stats

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csvparser "github.com/ribbondz/rsv-sub000/internal/parser/csv"
	"github.com/ribbondz/rsv-sub000/internal/pipeline"
)

// newTemplate infers types from the first sample lines, like the stats
// command does.
func newTemplate(t *testing.T, lines []string, indices []int, sample int, median bool) *Set {
	t.Helper()
	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = fmt.Sprintf("c%d", idx)
	}
	tpl, err := NewSet(Layout{
		Indices: indices,
		Names:   names,
		Types:   Infer(lines, indices, ',', '"', sample),
		Median:  median,
	})
	require.NoError(t, err)
	return tpl
}

// feed runs every line through one clone of tpl.
func feed(tpl *Set, lines []string) *Set {
	s := tpl.Clone()
	var fields []string
	for _, l := range lines {
		fields = csvparser.Split(fields, l, ',', '"')
		s.Accept(fields)
	}
	return s
}

func TestScenario_IntWidensToString(t *testing.T) {
	lines := []string{"1", "2", "x"}
	tpl := newTemplate(t, lines, []int{0}, 2, false)
	require.Equal(t, Int, tpl.Columns()[0].Type, "inferred from the first two rows")

	s := feed(tpl, lines)
	rows := s.Rows()
	require.Len(t, rows, 1)
	r := rows[0]

	assert.Equal(t, String, r.Type)
	assert.Equal(t, 3, r.Unique)
	assert.Equal(t, int64(0), r.Nulls)
	assert.Equal(t, int64(3), s.RowCount())
	assert.Equal(t, "1", r.MinString)
	assert.Equal(t, "x", r.MaxString)

	cells := r.Cells(false)
	assert.Equal(t, []string{"0", "string", "c0", "-", "-", "1", "x", "-", "3", "0", "-"}, cells)
	assert.Equal(t, len(s.Header()), len(cells))
}

func TestScenario_AllNull(t *testing.T) {
	lines := []string{"", "NA", "null", "Null"}
	tpl := newTemplate(t, lines, []int{0}, 0, false)
	s := feed(tpl, lines)
	r := s.Rows()[0]

	assert.Equal(t, Null, r.Type)
	assert.Equal(t, s.RowCount(), r.Nulls)
	assert.Equal(t, 0.0, r.Mean)
	assert.Equal(t, 0, r.Unique)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 0.0, r.Max)
	assert.False(t, r.NumericSeen())
	assert.Equal(t, []string{"0", "null", "c0", "0", "0", "-", "-", "0", "0", "4", "0"}, r.Cells(false))
}

func TestNumericStats(t *testing.T) {
	lines := []string{"1,2.5", "3,NA", "-2,0.5", "4,1"}
	tpl := newTemplate(t, lines, []int{0, 1}, 0, false)
	s := feed(tpl, lines)
	rows := s.Rows()

	assert.Equal(t, Int, rows[0].Type)
	assert.Equal(t, -2.0, rows[0].Min)
	assert.Equal(t, 4.0, rows[0].Max)
	assert.Equal(t, 6.0, rows[0].Total)
	assert.Equal(t, 1.5, rows[0].Mean)
	assert.Equal(t, 4, rows[0].Unique)

	assert.Equal(t, Float, rows[1].Type)
	assert.Equal(t, 0.5, rows[1].Min)
	assert.Equal(t, 2.5, rows[1].Max)
	assert.Equal(t, 4.0, rows[1].Total)
	assert.InDelta(t, 4.0/3.0, rows[1].Mean, 1e-12)
	assert.Equal(t, int64(1), rows[1].Nulls)
	assert.Equal(t, 0, rows[1].Unique, "unique is not reported for float columns")
	assert.Equal(t, []string{"1", "float", "c1", "0.5", "2.5", "-", "-", "1.3333333333333333", "0", "1", "4"}, rows[1].Cells(false))
}

func TestParse_SelfHealing(t *testing.T) {
	c := NewColumn(0, "c", Int)
	c.Parse("1")
	c.Parse("2.5")
	assert.Equal(t, Float, c.Type)
	c.Parse("3")
	assert.Equal(t, Float, c.Type)
	c.Parse("oops")
	assert.Equal(t, String, c.Type)
	c.Parse("7")
	assert.Equal(t, String, c.Type)

	// A column left at Null by inference takes its first real value's type.
	n := NewColumn(1, "n", Null)
	n.Parse("NA")
	n.Parse("12")
	assert.Equal(t, Int, n.Type)
	assert.Equal(t, int64(1), n.nulls)
}

func TestAccept_SkipsShortRecords(t *testing.T) {
	tpl, err := NewSet(Layout{Indices: []int{0, 2}, Names: []string{"a", "c"}, Types: []ColumnType{Int, Int}})
	require.NoError(t, err)
	s := tpl.Clone()

	assert.True(t, s.Accept([]string{"1", "x", "2"}))
	assert.False(t, s.Accept([]string{"1", "2"}))
	assert.True(t, s.Accept([]string{"3", "", "4", "extra"}))

	assert.Equal(t, int64(2), s.RowCount())
	assert.Equal(t, int64(1), s.Skipped())
	assert.Equal(t, 2, s.MaxIndex())
	assert.Equal(t, int64(0), tpl.RowCount(), "template untouched")
}

func TestNewSet_Validates(t *testing.T) {
	_, err := NewSet(Layout{Indices: []int{0, 1}, Names: []string{"a"}})
	assert.Error(t, err)
	_, err = NewSet(Layout{Indices: []int{-1}, Names: []string{"a"}})
	assert.Error(t, err)

	s, err := NewSet(Layout{Indices: []int{3}, Names: []string{"d"}})
	require.NoError(t, err)
	assert.Equal(t, Null, s.Columns()[0].Type, "missing types default to Null")
}

func TestMerge_LayoutMismatch(t *testing.T) {
	a, err := NewSet(Layout{Indices: []int{0}, Names: []string{"a"}})
	require.NoError(t, err)
	b, err := NewSet(Layout{Indices: []int{0, 1}, Names: []string{"a", "b"}})
	require.NoError(t, err)
	c, err := NewSet(Layout{Indices: []int{1}, Names: []string{"b"}})
	require.NoError(t, err)

	assert.Error(t, a.Merge(b))
	assert.Error(t, a.Merge(c))
}

// Type tags merge by lattice widening, whichever side arrives first.
func TestMerge_TypeWidensRegardlessOfOrder(t *testing.T) {
	tpl, err := NewSet(Layout{Indices: []int{0}, Names: []string{"a"}, Types: []ColumnType{Int}})
	require.NoError(t, err)

	ints := feed(tpl, []string{"1", "2"})
	strs := feed(tpl, []string{"b"})
	floats := feed(tpl, []string{"0.5"})

	ab := ints.Clone()
	require.NoError(t, ab.Merge(strs.Clone()))
	require.NoError(t, ab.Merge(floats.Clone()))

	ba := floats.Clone()
	require.NoError(t, ba.Merge(strs.Clone()))
	require.NoError(t, ba.Merge(ints.Clone()))

	assert.Equal(t, String, ab.Columns()[0].Type)
	assert.Equal(t, ab.Rows(), ba.Rows())
}

// genLines builds a deterministic input with integer, float, widening,
// sparse and text columns. Column 6 is an int column that takes float values
// from a third of the way in and a single text value late, so chunks that
// only see its float stretch stay Float until merged.
func genLines(n int) []string {
	r := rand.New(rand.NewPCG(42, 4242))
	words := []string{"alpha", "beta", "gamma", "delta", "Žluť", `"quoted, text"`}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var b strings.Builder
		fmt.Fprintf(&b, "%d,", r.IntN(1000)-500)
		fmt.Fprintf(&b, "%.3f,", r.NormFloat64()*1e3)
		// int column that turns into text late in the file
		if i == n-3 {
			b.WriteString("n/a,")
		} else {
			fmt.Fprintf(&b, "%d,", r.IntN(50))
		}
		// int column that turns into float midway
		if i > n/2 && r.IntN(10) == 0 {
			fmt.Fprintf(&b, "%.2f,", r.Float64()*10)
		} else {
			fmt.Fprintf(&b, "%d,", r.IntN(10))
		}
		if r.IntN(3) == 0 {
			b.WriteString("NA,")
		} else {
			fmt.Fprintf(&b, "%d,", r.Int64())
		}
		b.WriteString(words[r.IntN(len(words))])
		switch {
		case i == n*2/3:
			b.WriteString(",x")
		case i > n/3 && r.IntN(4) == 0:
			fmt.Fprintf(&b, ",%d.5", r.IntN(20))
		default:
			fmt.Fprintf(&b, ",%d", r.IntN(20))
		}
		if i < n-10 && r.IntN(50) == 0 {
			// too short for the selection below
			out = append(out, "1,2")
			continue
		}
		out = append(out, b.String())
	}
	return out
}

// runChunked splits lines into chunks of size and merges the partial sets in
// a shuffled order.
func runChunked(tpl *Set, lines []string, size int, seed uint64) *Set {
	var parts []*Set
	for i := 0; i < len(lines); i += size {
		parts = append(parts, feed(tpl, lines[i:min(i+size, len(lines))]))
	}
	r := rand.New(rand.NewPCG(seed, seed+1))
	r.Shuffle(len(parts), func(i, j int) { parts[i], parts[j] = parts[j], parts[i] })

	global := tpl.Clone()
	for _, p := range parts {
		if err := global.Merge(p); err != nil {
			panic(err)
		}
	}
	return global
}

func TestMerge_ChunkSizeAndOrderInvariance(t *testing.T) {
	lines := genLines(20_000)
	indices := []int{0, 1, 2, 3, 4, 5, 6}
	tpl := newTemplate(t, lines, indices, 100, true)

	want := runChunked(tpl, lines, len(lines), 0)
	wantRows := want.Rows()
	require.Equal(t, String, wantRows[2].Type)
	require.Equal(t, Float, wantRows[3].Type)
	require.Equal(t, Int, tpl.Columns()[6].Type)
	require.Equal(t, String, wantRows[6].Type)
	require.True(t, wantRows[0].HasMedian)

	for _, size := range []int{1, 100, 10_000} {
		for _, seed := range []uint64{1, 2} {
			got := runChunked(tpl, lines, size, seed)
			assert.Equal(t, want.RowCount(), got.RowCount(), "size %d", size)
			assert.Equal(t, want.Skipped(), got.Skipped(), "size %d", size)
			assert.Equal(t, wantRows, got.Rows(), "size %d seed %d", size, seed)
			assert.Equal(t, want.Digest(), got.Digest(), "size %d seed %d", size, seed)
		}
	}
}

func TestMerge_FloatStretchCountsTowardStringColumn(t *testing.T) {
	lines := []string{"1", "x", "1.5"}
	tpl, err := NewSet(Layout{Indices: []int{0}, Names: []string{"c0"}, Types: []ColumnType{Int}})
	require.NoError(t, err)

	for _, size := range []int{1, 2, 3} {
		r := runChunked(tpl, lines, size, 7).Rows()[0]
		assert.Equal(t, String, r.Type, "size %d", size)
		assert.Equal(t, 3, r.Unique, "size %d", size)
		assert.Equal(t, "1", r.MinString, "size %d", size)
		assert.Equal(t, "x", r.MaxString, "size %d", size)
	}
}

func TestMerge_Commutative(t *testing.T) {
	lines := genLines(2_000)
	tpl := newTemplate(t, lines, []int{0, 1, 2, 3, 4, 5}, 0, false)

	a1, b1 := feed(tpl, lines[:700]), feed(tpl, lines[700:])
	a2, b2 := a1.Clone(), b1.Clone()

	require.NoError(t, a1.Merge(b1))
	require.NoError(t, b2.Merge(a2))
	assert.Equal(t, a1.Rows(), b2.Rows())
	assert.Equal(t, a1.RowCount(), b2.RowCount())
}

func TestReduction_ThroughPipeline(t *testing.T) {
	lines := genLines(12_345)
	indices := []int{0, 1, 2, 3, 4, 5, 6}
	tpl := newTemplate(t, lines, indices, 100, false)
	want := runChunked(tpl, lines, len(lines), 0).Digest()

	for _, size := range []int{1, 100, 10_000} {
		diag := pipeline.NewDiagnostics(3)
		src := csvparser.NewLineReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
		got, sum, err := pipeline.Run(context.Background(), src, Reduction(tpl, ',', '"', diag),
			pipeline.Options{ChunkSize: size, Workers: 4, LineOffset: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(len(lines)), sum.Lines)
		assert.Equal(t, want, got.Digest(), "chunk size %d", size)
		assert.Equal(t, got.Skipped(), diag.Count())
		if diag.Count() > 0 {
			assert.Contains(t, diag.First()[0], "need at least 7")
		}
	}
}

func TestMedian(t *testing.T) {
	var lines []string
	for i := 1; i <= 1001; i++ {
		lines = append(lines, fmt.Sprint(i))
	}
	tpl := newTemplate(t, lines, []int{0}, 0, true)
	r := runChunked(tpl, lines, 97, 3).Rows()[0]
	require.True(t, r.HasMedian)
	assert.InEpsilon(t, 501.0, r.Median, 0.02)
	assert.Contains(t, tpl.Header(), "median")
	assert.Len(t, r.Cells(true), len(tpl.Header()))
}

func TestFinalize_Idempotent(t *testing.T) {
	tpl := newTemplate(t, []string{"a"}, []int{0}, 0, false)
	s := feed(tpl, []string{"a", "b", "a"})
	s.Finalize()
	s.Finalize()
	r := s.Rows()[0]
	assert.Equal(t, 2, r.Unique)
	assert.Equal(t, "a", r.MinString)
	assert.Equal(t, "b", r.MaxString)
}
