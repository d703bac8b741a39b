package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ribbondz/rsv-sub000/internal/metrics"
)

// ErrQueueClosed is returned when a worker cannot hand its result to the
// reducer because the run was cancelled. A run that fails this way never
// returns a partial aggregate as success.
var ErrQueueClosed = errors.New("pipeline: results queue closed")

// LineSource yields lines and their raw byte size; it returns io.EOF at the
// end of input. *csv.LineReader satisfies it.
type LineSource interface {
	ReadLine() (string, int, error)
}

// Reduction describes how a value of type R is built from chunks and how two
// values are combined. Merge must be commutative and associative: the order
// in which partial results reach the reducer is not defined.
type Reduction[R any] struct {
	// New returns an empty accumulator. It is called once per chunk and once
	// for the global result, possibly from different goroutines.
	New func() R
	// Process folds every line of c into acc and returns the accumulator.
	Process func(acc R, c Chunk) (R, error)
	// Merge folds src into dst and returns the result. src is not used
	// afterwards.
	Merge func(dst, src R) (R, error)
}

// Options controls the shape of a run. Zero values select defaults.
type Options struct {
	// Job labels metrics.
	Job string
	// Workers is the number of chunks processed in parallel
	// (default runtime.GOMAXPROCS(0)).
	Workers int
	// ChunkSize is the number of lines per chunk (default DefaultChunkSize).
	ChunkSize int
	// QueueDepth is the capacity of the chunk queue between reader and
	// workers (default 2 * Workers).
	QueueDepth int
	// LineOffset is the number of source lines consumed before the first
	// line handed to Run (usually the header). It only affects Chunk.First.
	LineOffset int64
	// Progress, when set, is updated by the reducer after every merge.
	Progress *Progress
	// Verbose logs every merged chunk.
	Verbose bool
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.QueueDepth <= 0 {
		o.QueueDepth = 2 * o.Workers
	}
	return o
}

// Summary describes the work merged by the reducer.
type Summary struct {
	Chunks  int64
	Lines   int64
	Bytes   int64
	Elapsed time.Duration
}

type result[R any] struct {
	seq   uint64
	lines int
	bytes int64
	value R
}

// Run reads src to the end and reduces it with red. The calling goroutine is
// the reducer; Run returns once every chunk has been merged or the first
// error occurred. Any error (reading, processing, merging or cancellation of
// ctx) discards the aggregate.
func Run[R any](ctx context.Context, src LineSource, red Reduction[R], opts Options) (R, Summary, error) {
	var zero R
	if red.New == nil || red.Process == nil || red.Merge == nil {
		return zero, Summary{}, errors.New("pipeline: incomplete reduction")
	}
	opts = opts.withDefaults()
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	chunks := make(chan Chunk, opts.QueueDepth)
	results, merged := unboundedQueue[result[R]](gctx)

	// Reader: the bounded chunk queue is the backpressure point.
	g.Go(func() error {
		defer close(chunks)
		return readChunks(gctx, src, opts.ChunkSize, opts.LineOffset, chunks)
	})

	// Dispatcher: one unit of work per chunk, at most Workers at a time.
	g.Go(func() error {
		defer close(results)
		pool, pctx := errgroup.WithContext(gctx)
		pool.SetLimit(opts.Workers)
		for c := range chunks {
			if pctx.Err() != nil {
				break
			}
			pool.Go(func() error {
				acc, err := red.Process(red.New(), c)
				if err != nil {
					return fmt.Errorf("chunk %d: %w", c.Seq, err)
				}
				r := result[R]{seq: c.Seq, lines: len(c.Lines), bytes: c.Bytes, value: acc}
				select {
				case results <- r:
					return nil
				case <-pctx.Done():
					return fmt.Errorf("%w: %w", ErrQueueClosed, context.Cause(pctx))
				}
			})
		}
		return pool.Wait()
	})

	// Reducer.
	acc := red.New()
	var (
		sum      Summary
		mergeErr error
	)
	for r := range merged {
		if mergeErr != nil {
			continue
		}
		next, err := red.Merge(acc, r.value)
		if err != nil {
			mergeErr = fmt.Errorf("merge chunk %d: %w", r.seq, err)
			cancel()
			continue
		}
		acc = next
		sum.Chunks++
		sum.Lines += int64(r.lines)
		sum.Bytes += r.bytes
		metrics.RecordChunk(opts.Job, r.bytes)
		opts.Progress.Update(int64(r.lines), r.bytes)
		if opts.Verbose {
			log.Printf("pipeline: merged chunk seq=%d lines=%d bytes=%d", r.seq, r.lines, r.bytes)
		}
	}

	err := g.Wait()
	sum.Elapsed = time.Since(start)
	switch {
	case mergeErr != nil:
		return zero, sum, mergeErr
	case err != nil:
		return zero, sum, err
	case ctx.Err() != nil:
		return zero, sum, ctx.Err()
	}
	return acc, sum, nil
}

func readChunks(ctx context.Context, src LineSource, size int, offset int64, out chan<- Chunk) error {
	var (
		seq  uint64
		line = offset
	)
	newChunk := func() Chunk {
		return Chunk{Seq: seq, First: line + 1, Lines: make([]string, 0, min(size, 64*1024))}
	}
	send := func(c Chunk) error {
		select {
		case out <- c:
			seq++
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c := newChunk()
	for {
		s, n, err := src.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reader: %w", err)
		}
		line++
		c.Lines = append(c.Lines, s)
		c.Bytes += int64(n)
		if len(c.Lines) == size {
			if err := send(c); err != nil {
				return err
			}
			c = newChunk()
		}
	}
	if len(c.Lines) > 0 {
		return send(c)
	}
	return nil
}

// CountLines is the reduction behind a row count: every line of every chunk
// counts once.
func CountLines() Reduction[int64] {
	return Reduction[int64]{
		New: func() int64 { return 0 },
		Process: func(acc int64, c Chunk) (int64, error) {
			return acc + int64(len(c.Lines)), nil
		},
		Merge: func(dst, src int64) (int64, error) { return dst + src, nil },
	}
}
