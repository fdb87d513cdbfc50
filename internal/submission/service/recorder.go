package service

import (
	"context"
	"math/rand/v2"
	"time"

	"submitrelay/internal/submission/model"
	"submitrelay/internal/submission/repository"
	"submitrelay/pkg/utils/logger"

	"go.uber.org/zap"
)

// RecordWriter appends one audit record per parsed submission.
type RecordWriter struct {
	repo    repository.RecordRepository
	bucket  string
	newID   func() int64
	timeout time.Duration
}

// NewRecordWriter creates a record writer. The bucket only feeds the recorded file path.
func NewRecordWriter(repo repository.RecordRepository, bucket string) *RecordWriter {
	return &RecordWriter{repo: repo, bucket: bucket, newID: rand.Int64}
}

// WithTimeout bounds each record write.
func (w *RecordWriter) WithTimeout(timeout time.Duration) *RecordWriter {
	w.timeout = timeout
	return w
}

// Record writes the audit record for req. Failures are logged and reported as false.
func (w *RecordWriter) Record(ctx context.Context, req model.SubmissionRequest, now time.Time) bool {
	if w == nil || w.repo == nil {
		logger.Warn(ctx, "record store is not configured, skip audit record")
		return false
	}
	record := model.AuditRecord{
		ID:           w.newID(),
		AssignmentID: req.AssignmentID,
		Email:        req.UserEmail,
		Timestamp:    ISOTimestamp(now),
		FilePath:     DeriveStoragePath(w.bucket, req.UserEmail, req.AssignmentID, req.UserID, now),
	}
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	if err := w.repo.Insert(ctx, record); err != nil {
		logger.Error(ctx, "write audit record failed",
			zap.Int64("record_id", record.ID),
			zap.String("assignment_id", record.AssignmentID),
			zap.Error(err),
		)
		return false
	}
	logger.Info(ctx, "audit record written",
		zap.Int64("record_id", record.ID),
		zap.String("assignment_id", record.AssignmentID),
		zap.String("file_path", record.FilePath),
		zap.String("timestamp", record.Timestamp),
	)
	return true
}
