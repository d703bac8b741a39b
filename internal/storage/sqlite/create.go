package sqlite

import (
	"fmt"
	"strings"

	"github.com/ribbondz/rsv-sub000/internal/storage"
)

// sqlType maps a portable kind to a SQLite type affinity. Timestamps are
// stored as TEXT; the driver writes time.Time in a sortable layout.
func sqlType(k storage.ColumnKind) string {
	switch k {
	case storage.KindInt:
		return "INTEGER"
	case storage.KindFloat:
		return "REAL"
	}
	return "TEXT"
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for table.
func BuildCreateTableSQL(table string, cols []storage.Column) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("sqlite ddl: table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("sqlite ddl: at least one column is required")
	}
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("sqlite ddl: column with empty name in table %s", table)
		}
		def := sqlIdent(c.Name) + " " + sqlType(c.Kind)
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", sqlIdent(table), strings.Join(defs, ",\n  ")), nil
}
