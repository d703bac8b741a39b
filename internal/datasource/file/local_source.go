// Package file implements local filesystem and standard-input data sources.
// Compressed files are decompressed transparently based on their extension.
package file

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a new Local data source bound to the provided filesystem
// path. The returned value is safe for concurrent use by multiple goroutines
// as long as the underlying path location is valid for concurrent reads.
func NewLocal(path string) *Local { return &Local{path: path} }

// Name returns the configured path.
func (l *Local) Name() string { return l.path }

// Open opens the configured path for reading.
//
// Behavior:
//   - If the context is already canceled at the time of the call, Open
//     returns the context error without touching the filesystem.
//   - Files ending in .gz, .bz2, .zst or .xz are wrapped with the matching
//     decompressor; closing the result closes both.
//   - Filesystem errors are wrapped with the path and remain inspectable
//     with errors.Is (e.g. os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	rc, err := Decompress(f, Compression(l.path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return rc, nil
}

// Compression returns the compression codec implied by the file extension:
// "gzip", "bzip2", "zstd", "xz" or "" for plain files.
func Compression(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return "gzip"
	case ".bz2":
		return "bzip2"
	case ".zst", ".zstd":
		return "zstd"
	case ".xz":
		return "xz"
	}
	return ""
}

// StripCompression removes a compression extension, so "a.csv.gz" yields
// "a.csv".
func StripCompression(path string) string {
	if Compression(path) == "" {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// Decompress wraps f with the reader for codec ("" returns f unchanged). The
// returned ReadCloser owns f; on error the caller still owns f.
func Decompress(f io.ReadCloser, codec string) (io.ReadCloser, error) {
	switch codec {
	case "gzip":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &stacked{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case "bzip2":
		return &stacked{Reader: bzip2.NewReader(f), closers: []func() error{f.Close}}, nil
	case "zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return &stacked{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }, f.Close}}, nil
	case "xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return &stacked{Reader: xr, closers: []func() error{f.Close}}, nil
	}
	return f, nil
}

// stacked closes every layer in order and reports the first error.
type stacked struct {
	io.Reader
	closers []func() error
}

func (s *stacked) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
