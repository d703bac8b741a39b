package storage

import (
	"context"
	"errors"
	"log"
	"time"
)

// CopyFn is a backend's bulk insert: it writes rows aligned to columns and
// returns how many rows the backend reports as written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains in, encodes each item into a row aligned with columns
// and calls copyFn once per batch of at most batchSize rows. It returns the
// number of rows copyFn reported and the first error. When ctx is cancelled
// the rows not yet flushed are dropped and ctx.Err() is returned.
func LoadBatches[T any](
	ctx context.Context,
	columns []string,
	in <-chan T,
	batchSize int,
	encode func(T) []any,
	copyFn CopyFn,
) (int64, error) {
	switch {
	case batchSize <= 0:
		return 0, errors.New("export: batch size must be > 0")
	case encode == nil || copyFn == nil:
		return 0, errors.New("export: encode and copy functions are required")
	}

	var (
		total   int64
		batches int
		start   = time.Now()
		batch   = make([][]any, 0, batchSize)
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batches++
		batch = batch[:0]
		if err != nil {
			log.Printf("export: batch=%d failed after %d rows: %v", batches, n, err)
			return err
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case item, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				log.Printf("export: rows=%d batches=%d elapsed=%s",
					total, batches, time.Since(start).Truncate(time.Millisecond))
				return total, nil
			}
			batch = append(batch, encode(item))
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
