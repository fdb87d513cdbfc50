package db

import (
	_ "github.com/lib/pq"
)

// PostgreSQLConfig holds the configuration for PostgreSQL connection pool
type PostgreSQLConfig struct {
	// DSN is the data source name
	// Format: "user=postgres password=password host=localhost port=5432 dbname=dbname sslmode=disable"
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`

	Pool PoolConfig `yaml:"pool"`
}

// NewPostgreSQL creates a new PostgreSQL database connection with connection pool
func NewPostgreSQL(cfg PostgreSQLConfig) (*SQLDatabase, error) {
	return openSQL("postgres", DialectPostgres, cfg.DSN, cfg.Pool)
}
