// Package sqlite opens embedded executors backed by modernc.org/sqlite.
// Queries are SQL; it serves local fixtures and tests of the executor
// boundary.
package sqlite

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/zoobzio/edgeql/sqlexec"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Capabilities returns the argument kinds SQLite binds. Arguments are named
// ($name, :name or @name); collections are bound as JSON text.
func Capabilities() sqlexec.Capabilities {
	return sqlexec.Capabilities{
		Args:        sqlexec.ArgsNamed,
		Collections: true,
	}
}

// Open opens dsn (":memory:" for a private in-memory database) and returns
// an executor.
func Open(dsn string, opts ...sqlexec.Option) (*sqlexec.Executor, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open sqlite database %s", dsn)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return New(db, opts...), nil
}

// New wraps an open SQLite database handle.
func New(db *sql.DB, opts ...sqlexec.Option) *sqlexec.Executor {
	defaults := []sqlexec.Option{
		sqlexec.WithTarget("sqlite"),
		sqlexec.WithCapabilities(Capabilities()),
	}
	return sqlexec.New(db, append(defaults, opts...)...)
}
