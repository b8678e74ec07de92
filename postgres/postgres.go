// Package postgres opens executors on servers speaking the PostgreSQL wire
// protocol, through pgx.
package postgres

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/zoobzio/edgeql/sqlexec"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// Capabilities returns the argument kinds the pgx driver binds. Arguments
// are positional ($1, $2, ...) in sorted name order.
func Capabilities() sqlexec.Capabilities {
	return sqlexec.Capabilities{
		Args:        sqlexec.ArgsPositional,
		Ranges:      true,
		Vectors:     true,
		Collections: true,
	}
}

// Open connects to dsn and returns an executor. Options are applied after
// the PostgreSQL defaults.
func Open(dsn string, opts ...sqlexec.Option) (*sqlexec.Executor, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open postgres connection")
	}
	return New(db, opts...), nil
}

// New wraps an open pgx-backed database handle.
func New(db *sql.DB, opts ...sqlexec.Option) *sqlexec.Executor {
	defaults := []sqlexec.Option{
		sqlexec.WithTarget("postgres"),
		sqlexec.WithCapabilities(Capabilities()),
	}
	return sqlexec.New(db, append(defaults, opts...)...)
}
