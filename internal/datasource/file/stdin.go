package file

import (
	"context"
	"io"
	"os"
)

// Stdin reads from the process's standard input. Open may be called once;
// closing the result does not close os.Stdin.
type Stdin struct {
	r io.Reader
}

// NewStdin returns a source bound to os.Stdin.
func NewStdin() *Stdin { return &Stdin{r: os.Stdin} }

// Name returns "-".
func (s *Stdin) Name() string { return "-" }

// Open returns a non-closing wrapper around standard input.
func (s *Stdin) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(s.r), nil
}
