package db

import (
	_ "github.com/go-sql-driver/mysql"
)

// MySQLConfig holds the configuration for MySQL connection pool
type MySQLConfig struct {
	// DSN is the data source name
	// Format: "user:password@tcp(host:port)/dbname?parseTime=true&loc=UTC"
	DSN string `yaml:"dsn" env:"MYSQL_DSN"`

	Pool PoolConfig `yaml:"pool"`
}

// NewMySQL creates a new MySQL database connection with connection pool
func NewMySQL(cfg MySQLConfig) (*SQLDatabase, error) {
	return openSQL("mysql", DialectMySQL, cfg.DSN, cfg.Pool)
}
