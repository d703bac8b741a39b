// Package storage contains the storage-agnostic export contract and a small
// registry of SQL backends. Backends register a Factory and a DDL builder from
// their init functions; callers pick one by kind at runtime:
//
//	import _ "github.com/ribbondz/rsv-sub000/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn, Table: "public.rsv_stats"})
//	if err != nil { ... }
//	defer repo.Close()
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the minimal surface the exporter needs from a backend.
type Repository interface {
	// CopyFrom appends rows (aligned to columns) to the configured table and
	// returns the number of rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	// Close releases connections.
	Close()
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind    string
	DSN     string
	Table   string
	Columns []string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a repository of cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds in sorted order. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
