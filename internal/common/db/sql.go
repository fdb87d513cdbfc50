package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PoolConfig holds connection pool settings shared by the SQL drivers.
type PoolConfig struct {
	// MaxOpenConnections is the maximum number of open connections to the database
	// Default: 10
	MaxOpenConnections int `yaml:"maxOpenConnections"`

	// MaxIdleConnections is the maximum number of connections in the idle connection pool
	// Default: 2
	MaxIdleConnections int `yaml:"maxIdleConnections"`

	// ConnMaxLifetime is the maximum amount of time a connection may be reused
	// Default: 5 minutes
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`

	// ConnMaxIdleTime is the maximum amount of time a connection may be idle
	// Default: 10 minutes
	ConnMaxIdleTime time.Duration `yaml:"connMaxIdleTime"`
}

func (c *PoolConfig) setDefaults() {
	if c.MaxOpenConnections == 0 {
		c.MaxOpenConnections = 10
	}
	if c.MaxIdleConnections == 0 {
		c.MaxIdleConnections = 2
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 10 * time.Minute
	}
}

// SQLDatabase implements Database over database/sql for one dialect.
type SQLDatabase struct {
	db      *sql.DB
	dialect Dialect
}

func openSQL(driver string, dialect Dialect, dsn string, pool PoolConfig) (*SQLDatabase, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DSN cannot be empty")
	}
	pool.setDefaults()

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(pool.MaxOpenConnections)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConnections)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLDatabase{db: sqlDB, dialect: dialect}, nil
}

// NewWithDB wraps an existing sql.DB without pinging it.
func NewWithDB(sqlDB *sql.DB, dialect Dialect) *SQLDatabase {
	return &SQLDatabase{db: sqlDB, dialect: dialect}
}

func (d *SQLDatabase) Dialect() Dialect {
	return d.dialect
}

// Query executes a query that returns rows
func (d *SQLDatabase) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &sqlRows{rows: rows}, nil
}

// QueryRow executes a query that returns at most one row
func (d *SQLDatabase) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return &sqlRow{row: d.db.QueryRowContext(ctx, query, args...)}
}

// Exec executes a query that doesn't return rows
func (d *SQLDatabase) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec failed: %w", err)
	}
	return result, nil
}

// Ping verifies a connection to the database is still alive
func (d *SQLDatabase) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *SQLDatabase) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return nil
}

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool {
	return r.rows.Next()
}

func (r *sqlRows) Scan(dest ...interface{}) error {
	if err := r.rows.Scan(dest...); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}

func (r *sqlRows) Err() error {
	return r.rows.Err()
}

type sqlRow struct {
	row *sql.Row
}

// Scan keeps sql.ErrNoRows matchable through errors.Is.
func (r *sqlRow) Scan(dest ...interface{}) error {
	if err := r.row.Scan(dest...); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}
