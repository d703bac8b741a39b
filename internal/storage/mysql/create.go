package mysql

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
		return "DOUBLE"
	case storage.KindTime:
		return "DATETIME(6)"
	}
	return "TEXT"
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for table.
func BuildCreateTableSQL(table string, cols []storage.Column) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("mysql ddl: table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("mysql ddl: at least one column is required")
	}
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		null := "NOT NULL"
		if c.Nullable {
			null = "NULL"
		}
		defs = append(defs, fmt.Sprintf("%s %s %s", myIdent(c.Name), sqlType(c.Kind), null))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", myFQN(table), strings.Join(defs, ",\n  ")), nil
}
