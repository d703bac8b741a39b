package mssql

import (
	"fmt"
	"strings"

	"github.com/ribbondz/rsv-sub000/internal/storage"
)

func sqlType(k storage.ColumnKind) string {
	switch k {
	case storage.KindInt:
		return "BIGINT"
	case storage.KindFloat:
		return "FLOAT"
	case storage.KindTime:
		return "DATETIME2"
	}
	return "NVARCHAR(MAX)"
}

// BuildCreateTableSQL renders an idempotent CREATE TABLE guarded by
// OBJECT_ID, since SQL Server has no IF NOT EXISTS for tables.
func BuildCreateTableSQL(table string, cols []storage.Column) (string, error) {
	fqn := strings.TrimSpace(table)
	if fqn == "" {
		return "", fmt.Errorf("mssql ddl: table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("mssql ddl: at least one column is required")
	}

	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("mssql ddl: column with empty name in table %s", fqn)
		}
		null := " NULL"
		if !c.Nullable {
			null = " NOT NULL"
		}
		defs = append(defs, msIdent(c.Name)+" "+sqlType(c.Kind)+null)
	}

	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s (\n  %s\n);",
		strings.ReplaceAll(fqn, "'", "''"),
		msFQN(fqn),
		strings.Join(defs, ",\n  "),
	), nil
}
