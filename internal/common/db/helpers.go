package db

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Querier abstracts database operations.
type Querier interface {
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
}

// IsNoRows checks if the error is sql.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// UniqueViolation inspects a duplicate key error and returns the key name when available.
func UniqueViolation(err error) (string, bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return ExtractDuplicateKeyName(myErr.Message), true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}

// ExtractDuplicateKeyName parses duplicate key name from MySQL error message.
func ExtractDuplicateKeyName(message string) string {
	if message == "" {
		return ""
	}
	const marker = "for key "
	idx := strings.LastIndex(message, marker)
	if idx == -1 {
		return ""
	}
	key := strings.TrimSpace(message[idx+len(marker):])
	return strings.Trim(key, " `\"'")
}

// Rebind rewrites '?' placeholders into the dialect's native form.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// QuoteIdent quotes a table or column name for the dialect.
func QuoteIdent(dialect Dialect, name string) string {
	if dialect == DialectPostgres {
		return pq.QuoteIdentifier(name)
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
