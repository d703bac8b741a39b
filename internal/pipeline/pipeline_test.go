package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csvparser "github.com/ribbondz/rsv-sub000/internal/parser/csv"
)

// sliceSource serves lines from memory; every line costs len+1 bytes.
type sliceSource struct {
	lines []string
	pos   int
	err   error // returned instead of io.EOF once lines run out
}

func (s *sliceSource) ReadLine() (string, int, error) {
	if s.pos == len(s.lines) {
		if s.err != nil {
			return "", 0, s.err
		}
		return "", 0, io.EOF
	}
	l := s.lines[s.pos]
	s.pos++
	return l, len(l) + 1, nil
}

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

type span struct {
	seq   uint64
	first int64
	n     int
}

// spans records the shape of every chunk it sees.
func spans() Reduction[[]span] {
	return Reduction[[]span]{
		New: func() []span { return nil },
		Process: func(acc []span, c Chunk) ([]span, error) {
			return append(acc, span{seq: c.Seq, first: c.First, n: len(c.Lines)}), nil
		},
		Merge: func(dst, src []span) ([]span, error) { return append(dst, src...), nil },
	}
}

func TestRun_CountIsIndependentOfChunkingAndWorkers(t *testing.T) {
	t.Parallel()

	lines := numbered(10_007)
	for _, size := range []int{1, 3, 100, 10_007, 50_000} {
		for _, workers := range []int{1, 4} {
			t.Run(fmt.Sprintf("size=%d/workers=%d", size, workers), func(t *testing.T) {
				t.Parallel()
				n, sum, err := Run(context.Background(), &sliceSource{lines: lines}, CountLines(),
					Options{ChunkSize: size, Workers: workers})
				require.NoError(t, err)
				assert.Equal(t, int64(len(lines)), n)
				assert.Equal(t, int64(len(lines)), sum.Lines)
				assert.Equal(t, int64((len(lines)+size-1)/size), sum.Chunks)

				var bytes int64
				for _, l := range lines {
					bytes += int64(len(l) + 1)
				}
				assert.Equal(t, bytes, sum.Bytes)
			})
		}
	}
}

func TestRun_ChunksAreContiguous(t *testing.T) {
	t.Parallel()

	got, _, err := Run(context.Background(), &sliceSource{lines: numbered(25)}, spans(),
		Options{ChunkSize: 10, Workers: 3, LineOffset: 1})
	require.NoError(t, err)

	slices.SortFunc(got, func(a, b span) int { return int(a.seq) - int(b.seq) })
	assert.Equal(t, []span{
		{seq: 0, first: 2, n: 10},
		{seq: 1, first: 12, n: 10},
		{seq: 2, first: 22, n: 5},
	}, got)
}

func TestRun_EmptyInput(t *testing.T) {
	t.Parallel()

	n, sum, err := Run(context.Background(), &sliceSource{}, CountLines(), Options{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, sum.Chunks)
}

func TestRun_ProcessErrorDiscardsResult(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad chunk")
	red := CountLines()
	red.Process = func(acc int64, c Chunk) (int64, error) {
		if c.Seq == 3 {
			return 0, boom
		}
		return acc + int64(len(c.Lines)), nil
	}

	n, _, err := Run(context.Background(), &sliceSource{lines: numbered(100)}, red,
		Options{ChunkSize: 10, Workers: 2})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "chunk 3")
	assert.Zero(t, n)
}

func TestRun_MergeError(t *testing.T) {
	t.Parallel()

	boom := errors.New("incompatible")
	var merges atomic.Int32
	red := CountLines()
	red.Merge = func(dst, src int64) (int64, error) {
		if merges.Add(1) == 2 {
			return 0, boom
		}
		return dst + src, nil
	}

	_, _, err := Run(context.Background(), &sliceSource{lines: numbered(100)}, red,
		Options{ChunkSize: 10, Workers: 2})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "merge chunk")
}

func TestRun_ReaderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk gone")
	_, _, err := Run(context.Background(), &sliceSource{lines: numbered(42), err: boom}, CountLines(),
		Options{ChunkSize: 5})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "reader:")
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, _, err := Run(ctx, &sliceSource{lines: numbered(1000)}, CountLines(), Options{ChunkSize: 1})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestRun_IncompleteReduction(t *testing.T) {
	t.Parallel()

	_, _, err := Run(context.Background(), &sliceSource{}, Reduction[int]{New: func() int { return 0 }}, Options{})
	require.Error(t, err)
}

func TestRun_UpdatesProgress(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	p := NewProgress(&sb, false)
	_, _, err := Run(context.Background(), &sliceSource{lines: numbered(30)}, CountLines(),
		Options{ChunkSize: 7, Progress: p})
	require.NoError(t, err)

	chunks, lines, _ := p.Snapshot()
	assert.Equal(t, int64(5), chunks)
	assert.Equal(t, int64(30), lines)
	assert.Empty(t, sb.String(), "no status line on a non-terminal writer")
}

func TestRun_WithLineReader(t *testing.T) {
	t.Parallel()

	in := "a\r\nb\n\nc"
	lr := csvparser.NewLineReader(strings.NewReader(in))
	n, sum, err := Run(context.Background(), lr, CountLines(), Options{ChunkSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, int64(len(in)), sum.Bytes)
}

func TestChunkSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		fixed  int
		budget int64
		sizes  []int
		want   int
	}{
		{"fixed wins", 7, 1 << 20, []int{10}, 7},
		{"default", 0, 0, []int{10}, DefaultChunkSize},
		{"budget without sample", 0, 1000, nil, DefaultChunkSize},
		{"budget over mean", 0, 1000, []int{8, 12}, 100},
		{"clamped low", 0, 5, []int{100}, MinChunkSize},
		{"clamped high", 0, 1 << 40, []int{1}, MaxChunkSize},
		{"empty lines", 0, 100, []int{0, 0}, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ChunkSize(tc.fixed, tc.budget, tc.sizes))
		})
	}
}
