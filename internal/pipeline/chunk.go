// Package pipeline runs a reduction over the lines of a stream using a
// bounded, backpressured fan-out:
//
//	reader ──(bounded chunk queue)──▶ worker pool ──(unbounded results)──▶ reducer
//
// The reader groups lines into Chunks, the dispatcher hands every Chunk to a
// worker that builds a private partial result, and the calling goroutine
// merges the partial results one at a time. No accumulator is ever shared
// between goroutines; ownership moves with the values sent on the channels.
package pipeline

// Chunk is a batch of consecutive source lines. A Chunk is produced once by
// the reader and consumed once by exactly one worker.
type Chunk struct {
	// Seq numbers chunks from 0 in reading order.
	Seq uint64
	// First is the 1-based line number of Lines[0] in the source.
	First int64
	Lines []string
	// Bytes is the raw size of the lines including terminators.
	Bytes int64
}

const (
	// DefaultChunkSize is the number of lines per chunk when neither a fixed
	// size nor a byte budget is configured.
	DefaultChunkSize = 50_000
	// MinChunkSize and MaxChunkSize clamp sizes derived from a byte budget.
	MinChunkSize = 1
	MaxChunkSize = 1_000_000
)

// ChunkSize resolves the number of lines per chunk. A positive fixed size
// wins; otherwise a positive byteBudget is divided by the mean of
// sampleSizes (raw line sizes from the head of the input); otherwise
// DefaultChunkSize is used.
func ChunkSize(fixed int, byteBudget int64, sampleSizes []int) int {
	if fixed > 0 {
		return fixed
	}
	if byteBudget <= 0 || len(sampleSizes) == 0 {
		return DefaultChunkSize
	}
	var total int64
	for _, n := range sampleSizes {
		total += int64(n)
	}
	avg := max(total/int64(len(sampleSizes)), 1)
	n := byteBudget / avg
	return int(min(max(n, MinChunkSize), MaxChunkSize))
}
