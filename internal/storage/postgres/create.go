package postgres

import (
	"fmt"
	"strings"

	"github.com/ribbondz/rsv-sub000/internal/storage"
)

// sqlType maps a portable column kind to a Postgres type.
func sqlType(k storage.ColumnKind) string {
	switch k {
	case storage.KindInt:
		return "bigint"
	case storage.KindFloat:
		return "double precision"
	case storage.KindTime:
		return "timestamptz"
	}
	return "text"
}

// BuildCreateTableSQL builds a deterministic CREATE TABLE IF NOT EXISTS
// statement. Identifiers are double-quoted with embedded quotes escaped.
func BuildCreateTableSQL(table string, cols []storage.Column) (string, error) {
	fqn := strings.TrimSpace(table)
	if fqn == "" {
		return "", fmt.Errorf("postgres ddl: table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("postgres ddl: at least one column is required")
	}

	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("postgres ddl: column with empty name in table %s", fqn)
		}
		def := quoteIdent(c.Name) + " " + sqlType(c.Kind)
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteFQN(fqn),
		strings.Join(defs, ",\n  "),
	), nil
}

// quoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	quoteIdent(`pcv`)        => `"pcv"`
//	quoteIdent(`weird"name`) => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// quoteFQN quotes a possibly schema-qualified name like "public.users" to
// `"public"."users"`. Empty segments are ignored.
func quoteFQN(f string) string {
	parts := strings.Split(f, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}
