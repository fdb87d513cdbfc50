package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig holds Google Cloud Storage settings.
// Empty credentials fall back to Application Default Credentials.
type GCSConfig struct {
	CredentialsFile string `yaml:"credentialsFile" env:"GCS_CREDENTIALS_FILE"`
	Endpoint        string `yaml:"endpoint" env:"GCS_ENDPOINT"`

	// Anonymous skips authentication, for emulators.
	Anonymous bool `yaml:"anonymous" env:"GCS_ANONYMOUS"`
}

const gcsChunkSize = 16 << 20

// GCSStorage implements ObjectStorage on Google Cloud Storage.
type GCSStorage struct {
	client  *gcs.Client
	initErr error
}

// NewGCSStorage creates a GCS client. A client that cannot be built, for
// example without credentials, is reported by PutObject and BucketExists.
func NewGCSStorage(ctx context.Context, cfg GCSConfig) *GCSStorage {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	switch {
	case cfg.Anonymous:
		opts = append(opts, option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return &GCSStorage{initErr: fmt.Errorf("create gcs client failed: %w", err)}
	}
	return &GCSStorage{client: client}
}

func (s *GCSStorage) PutObject(ctx context.Context, bucket, objectKey string, reader io.Reader, sizeBytes int64, contentType string) (ObjectInfo, error) {
	if reader == nil {
		return ObjectInfo{}, fmt.Errorf("reader is required")
	}
	if bucket == "" {
		return ObjectInfo{}, fmt.Errorf("bucket is required")
	}
	if objectKey == "" {
		return ObjectInfo{}, fmt.Errorf("objectKey is required")
	}
	if s.initErr != nil {
		return ObjectInfo{}, s.initErr
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(bucket).Object(objectKey).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if sizeBytes >= 0 && sizeBytes < gcsChunkSize {
		// Fits one request; skip the resumable session.
		w.ChunkSize = 0
	}
	if _, err := io.Copy(w, reader); err != nil {
		cancel()
		_ = w.Close()
		return ObjectInfo{}, fmt.Errorf("gcs write object failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("gcs put object failed: %w", err)
	}

	attrs := w.Attrs()
	info := ObjectInfo{Bucket: bucket, Key: objectKey, SizeBytes: sizeBytes}
	if attrs != nil {
		info.SizeBytes = attrs.Size
		info.ETag = attrs.Etag
	}
	return info, nil
}

func (s *GCSStorage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if s.initErr != nil {
		return false, s.initErr
	}
	_, err := s.client.Bucket(bucket).Attrs(ctx)
	if errors.Is(err, gcs.ErrBucketNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("gcs bucket attrs failed: %w", err)
	}
	return true, nil
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
