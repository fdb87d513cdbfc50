package repository

import (
	"context"
	"errors"
	"fmt"

	"submitrelay/internal/common/db"
	"submitrelay/internal/submission/model"
	appErr "submitrelay/pkg/errors"
)

const defaultRecordTable = "submission_records"

// ErrNilRecordTable is returned when a record store has no table configured.
var ErrNilRecordTable = errors.New("record table is required")

// RecordRepository appends audit records. Records are never updated or deleted.
type RecordRepository interface {
	Insert(ctx context.Context, record model.AuditRecord) error
}

// SQLRecordRepository implements RecordRepository on MySQL or PostgreSQL.
type SQLRecordRepository struct {
	db    db.Database
	table string
}

// NewSQLRecordRepository creates a SQL backed record repository.
func NewSQLRecordRepository(database db.Database, table string) *SQLRecordRepository {
	if table == "" {
		table = defaultRecordTable
	}
	return &SQLRecordRepository{db: database, table: table}
}

// EnsureSchema creates the record table when it does not exist yet.
func (r *SQLRecordRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return appErr.New(appErr.DatabaseError).WithMessage("database is not initialized")
	}
	dialect := r.db.Dialect()
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGINT PRIMARY KEY,
	assignment_id VARCHAR(128) NOT NULL,
	email VARCHAR(320) NOT NULL,
	%s VARCHAR(32) NOT NULL,
	file_path VARCHAR(1024) NOT NULL
)`, db.QuoteIdent(dialect, r.table), db.QuoteIdent(dialect, "timestamp"))
	if _, err := r.db.Exec(ctx, stmt); err != nil {
		return appErr.Wrapf(err, appErr.DatabaseError, "create record table failed")
	}
	return nil
}

// Insert writes one record.
func (r *SQLRecordRepository) Insert(ctx context.Context, record model.AuditRecord) error {
	if r.db == nil {
		return appErr.New(appErr.DatabaseError).WithMessage("database is not initialized")
	}
	dialect := r.db.Dialect()
	query := db.Rebind(dialect, fmt.Sprintf(
		"INSERT INTO %s (id, assignment_id, email, %s, file_path) VALUES (?, ?, ?, ?, ?)",
		db.QuoteIdent(dialect, r.table), db.QuoteIdent(dialect, "timestamp"),
	))
	_, err := r.db.Exec(ctx, query, record.ID, record.AssignmentID, record.Email, record.Timestamp, record.FilePath)
	if err != nil {
		if key, ok := db.UniqueViolation(err); ok {
			return appErr.Wrapf(err, appErr.AuditRecordWriteFailed, "duplicate record id %d", record.ID).WithDetail("key", key)
		}
		return appErr.Wrapf(err, appErr.AuditRecordWriteFailed, "insert record failed")
	}
	return nil
}
