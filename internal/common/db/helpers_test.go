package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"submitrelay/internal/common/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

func TestRebind(t *testing.T) {
	cases := []struct {
		name    string
		dialect db.Dialect
		query   string
		want    string
	}{
		{name: "mysql unchanged", dialect: db.DialectMySQL, query: "SELECT * FROM t WHERE a = ? AND b = ?", want: "SELECT * FROM t WHERE a = ? AND b = ?"},
		{name: "postgres numbered", dialect: db.DialectPostgres, query: "SELECT * FROM t WHERE a = ? AND b = ?", want: "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{name: "postgres no placeholders", dialect: db.DialectPostgres, query: "SELECT 1", want: "SELECT 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := db.Rebind(tc.dialect, tc.query); got != tc.want {
				t.Fatalf("Rebind() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := db.QuoteIdent(db.DialectMySQL, "submission_records"); got != "`submission_records`" {
		t.Fatalf("unexpected mysql ident %q", got)
	}
	if got := db.QuoteIdent(db.DialectMySQL, "a`b"); got != "`a``b`" {
		t.Fatalf("unexpected escaped mysql ident %q", got)
	}
	if got := db.QuoteIdent(db.DialectPostgres, "timestamp"); got != `"timestamp"` {
		t.Fatalf("unexpected postgres ident %q", got)
	}
}

func TestUniqueViolation(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantKey string
		wantOK  bool
	}{
		{name: "mysql duplicate", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '5' for key 'PRIMARY'"}, wantKey: "PRIMARY", wantOK: true},
		{name: "wrapped mysql duplicate", err: fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key `uk_email`"}), wantKey: "uk_email", wantOK: true},
		{name: "postgres duplicate", err: &pq.Error{Code: "23505", Constraint: "submission_records_pkey"}, wantKey: "submission_records_pkey", wantOK: true},
		{name: "mysql other", err: &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, ok := db.UniqueViolation(tc.err)
			if ok != tc.wantOK || key != tc.wantKey {
				t.Fatalf("UniqueViolation() = (%q, %v), want (%q, %v)", key, ok, tc.wantKey, tc.wantOK)
			}
		})
	}
}

func TestSQLDatabase(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	database := db.NewWithDB(sqlDB, db.DialectPostgres)
	ctx := context.Background()

	if database.Dialect() != db.DialectPostgres {
		t.Fatalf("unexpected dialect %s", database.Dialect())
	}

	mock.ExpectPing()
	if err := database.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	mock.ExpectQuery("SELECT id FROM records").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	rows, err := database.Query(ctx, "SELECT id FROM records")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows failed: %v", err)
	}
	_ = rows.Close()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected ids %v", ids)
	}

	mock.ExpectQuery("SELECT id FROM records WHERE id").WithArgs(9).WillReturnError(sql.ErrNoRows)
	var id int64
	err = database.QueryRow(ctx, "SELECT id FROM records WHERE id = $1", 9).Scan(&id)
	if !db.IsNoRows(err) {
		t.Fatalf("expected no rows, got %v", err)
	}

	mock.ExpectExec("DELETE FROM records").WillReturnResult(sqlmock.NewResult(0, 3))
	res, err := database.Exec(ctx, "DELETE FROM records")
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 3 {
		t.Fatalf("expected 3 rows affected, got %d", n)
	}

	mock.ExpectClose()
	if err := database.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := db.NewMySQL(db.MySQLConfig{}); err == nil {
		t.Fatalf("expected error for empty mysql dsn")
	}
	if _, err := db.NewPostgreSQL(db.PostgreSQLConfig{}); err == nil {
		t.Fatalf("expected error for empty postgres dsn")
	}
}
