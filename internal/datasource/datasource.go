// Package datasource defines where input bytes come from. Implementations
// live in sub-packages; the CLI picks one from the job configuration.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh stream of delimited text. Callers must close the
// returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Named is implemented by sources that can describe their origin, for
// example in export rows and log lines.
type Named interface {
	Name() string
}

// NameOf returns s.Name() when available and "-" otherwise.
func NameOf(s Source) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "-"
}
