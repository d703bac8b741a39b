package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ribbondz/rsv-sub000/internal/stats"
)

// defaultBatchSize bounds the rows per CopyFrom call.
const defaultBatchSize = 500

// Run identifies one export. Every row written by the same run carries the
// same RunID, Source and At.
type Run struct {
	RunID  string
	Source string
	At     time.Time
	Rows   int64
}

// NewRun returns a Run with a fresh random id, stamped now (UTC).
func NewRun(source string, rows int64) Run {
	return Run{RunID: uuid.NewString(), Source: source, At: time.Now().UTC(), Rows: rows}
}

// StatsRow converts one statistics row into values aligned with StatsColumns.
// Statistics that do not apply to the column type become NULL.
func StatsRow(run Run, r stats.Row) []any {
	var (
		minV, maxV, mean, total, median any
		minS, maxS                      any
	)
	if r.Type == stats.String {
		if r.MinString != "" {
			minS, maxS = r.MinString, r.MaxString
		}
	} else {
		minV, maxV, mean, total = r.Min, r.Max, r.Mean, r.Total
	}
	if r.HasMedian {
		median = r.Median
	}
	return []any{
		run.RunID,
		run.Source,
		run.At,
		run.Rows,
		int64(r.Index),
		r.Type.String(),
		r.Name,
		minV, maxV,
		minS, maxS,
		mean,
		int64(r.Unique),
		r.Nulls,
		total,
		median,
	}
}

// ExportStats writes one row per statistics row through repo and returns the
// number of rows written. Rows are fed to LoadBatches from a separate
// goroutine, the same way the loader is driven for large inputs.
func ExportStats(ctx context.Context, repo Repository, run Run, rows []stats.Row) (int64, error) {
	cols := ColumnNames(StatsColumns)
	in := make(chan stats.Row)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(in)
		for _, r := range rows {
			select {
			case in <- r:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var total int64
	g.Go(func() error {
		encode := func(r stats.Row) []any { return StatsRow(run, r) }
		n, err := LoadBatches(gctx, cols, in, defaultBatchSize, encode, repo.CopyFrom)
		total = n
		return err
	})
	if err := g.Wait(); err != nil {
		return total, fmt.Errorf("export run %s: %w", run.RunID, err)
	}
	log.Printf("export: run_id=%s source=%s rows=%d", run.RunID, run.Source, total)
	return total, nil
}
