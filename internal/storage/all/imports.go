// Package all wires all built-in export backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories and DDL builders with the storage package. After that the
// following kinds are available to storage.New and storage.EnsureTable:
//
//   - "postgres"
//   - "mssql"
//   - "mysql"
//   - "sqlite"
//
// A binary that needs only a subset can import the backends directly instead.
package all

import (
	_ "github.com/ribbondz/rsv-sub000/internal/storage/mssql"
	_ "github.com/ribbondz/rsv-sub000/internal/storage/mysql"
	_ "github.com/ribbondz/rsv-sub000/internal/storage/postgres"
	_ "github.com/ribbondz/rsv-sub000/internal/storage/sqlite"
)
