package storage

import (
	"context"
	"fmt"
	"sync"
)

// DDLBuilder renders a backend-specific CREATE TABLE statement for table.
type DDLBuilder func(table string, cols []Column) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBuilder{}
)

// RegisterDDL registers (or replaces) the DDL builder for the given storage
// kind. It is typically called from backend packages' init() functions.
func RegisterDDL(kind string, fn DDLBuilder) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// CreateTableSQL returns the statement that creates the export table for kind.
func CreateTableSQL(kind, table string) (string, error) {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no DDL builder registered for storage.kind=%q", kind)
	}
	return fn(table, StatsColumns)
}

// EnsureTable creates the export table through repo when it does not exist.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string) error {
	sql, err := CreateTableSQL(kind, table)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}
