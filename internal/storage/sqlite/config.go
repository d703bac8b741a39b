package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:rsv.db?_pragma=busy_timeout(5000)"
	//   "rsv.db"
	//   ":memory:"
	DSN string

	// Table is the target table name for inserts, e.g. "rsv_stats".
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
