package service

import (
	"context"
	"io"
	"time"

	"submitrelay/internal/common/storage"
	"submitrelay/internal/submission/model"
	appErr "submitrelay/pkg/errors"
	"submitrelay/pkg/utils/logger"

	"go.uber.org/zap"
)

const artifactContentType = "application/zip"

// Uploader relays artifact streams to object storage.
type Uploader struct {
	storage storage.ObjectStorage
	bucket  string
	now     func() time.Time
}

// NewUploader creates an uploader for bucket.
func NewUploader(store storage.ObjectStorage, bucket string) *Uploader {
	return &Uploader{storage: store, bucket: bucket, now: time.Now}
}

// Upload pipes stream into the bucket. The stream is always closed.
// sizeBytes may be -1 when the length is unknown.
func (u *Uploader) Upload(ctx context.Context, stream io.ReadCloser, sizeBytes int64, assignmentID, userID, email string) model.UploadOutcome {
	if stream != nil {
		defer stream.Close()
	}
	if err := u.check(stream); err != nil {
		logger.Error(ctx, "upload submission skipped", zap.Error(err))
		return model.UploadOutcome{}
	}
	if sizeBytes <= 0 {
		sizeBytes = -1
	}

	key := DeriveObjectKey(email, assignmentID, userID, u.now())
	logger.Info(ctx, "uploading submission artifact", zap.String("bucket", u.bucket), zap.String("key", key))

	info, err := u.storage.PutObject(ctx, u.bucket, key, stream, sizeBytes, artifactContentType)
	if err != nil {
		logger.Error(ctx, "upload submission failed",
			zap.String("bucket", u.bucket),
			zap.String("key", key),
			zap.Error(appErr.Wrap(err, appErr.ArtifactUploadFailed)),
		)
		return model.UploadOutcome{}
	}

	path := u.bucket + "/" + key
	logger.Info(ctx, "upload submission finished", zap.String("path", path), zap.Int64("size_bytes", info.SizeBytes))
	return model.UploadOutcome{Status: true, Path: path}
}

func (u *Uploader) check(stream io.Reader) error {
	switch {
	case u == nil || u.storage == nil:
		return appErr.New(appErr.StorageNotConfigured)
	case u.bucket == "":
		return appErr.New(appErr.StorageNotConfigured).WithMessage("bucket name is not configured")
	case stream == nil:
		return appErr.New(appErr.ArtifactUploadFailed).WithMessage("artifact stream is nil")
	}
	return nil
}
