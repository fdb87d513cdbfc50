package db

import (
	"context"
)

// Dialect names the SQL flavour behind a Database.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// Database is the connection-pool abstraction shared by repositories.
type Database interface {
	Querier

	// Dialect reports the placeholder style and DDL flavour.
	Dialect() Dialect

	// Ping verifies a connection to the database is still alive
	Ping(ctx context.Context) error

	// Close closes the database connection
	Close() error
}

// Rows is an iterator over query results.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// Row is the result of QueryRow.
type Row interface {
	Scan(dest ...interface{}) error
}

// Result summarizes an executed statement.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}
