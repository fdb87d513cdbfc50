package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKey string `yaml:"accessKey" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secretKey" env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `yaml:"useSSL" env:"MINIO_USE_SSL"`
	Region    string `yaml:"region"`

	// PartSizeBytes controls the multipart chunk size used for unknown-length streams.
	PartSizeBytes uint64 `yaml:"partSizeBytes"`
}

const defaultMinIOPartSize = 16 << 20

// MinIOStorage implements ObjectStorage using MinIO S3-compatible APIs.
type MinIOStorage struct {
	client   *minio.Client
	partSize uint64
	credsErr error
}

// NewMinIOStorage creates a MinIO client. Missing credentials are reported
// by PutObject and BucketExists.
func NewMinIOStorage(cfg MinIOConfig) (*MinIOStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	var credsErr error
	switch {
	case cfg.AccessKey == "":
		credsErr = fmt.Errorf("minio accessKey is required")
	case cfg.SecretKey == "":
		credsErr = fmt.Errorf("minio secretKey is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}
	partSize := cfg.PartSizeBytes
	if partSize == 0 {
		partSize = defaultMinIOPartSize
	}
	return &MinIOStorage{client: client, partSize: partSize, credsErr: credsErr}, nil
}

func (s *MinIOStorage) PutObject(ctx context.Context, bucket, objectKey string, reader io.Reader, sizeBytes int64, contentType string) (ObjectInfo, error) {
	if reader == nil {
		return ObjectInfo{}, fmt.Errorf("reader is required")
	}
	if bucket == "" {
		return ObjectInfo{}, fmt.Errorf("bucket is required")
	}
	if objectKey == "" {
		return ObjectInfo{}, fmt.Errorf("objectKey is required")
	}
	if s.credsErr != nil {
		return ObjectInfo{}, s.credsErr
	}
	opts := minio.PutObjectOptions{}
	if contentType != "" {
		opts.ContentType = contentType
	}
	if sizeBytes < 0 {
		// Unknown length: minio buffers one part at a time.
		sizeBytes = -1
		opts.PartSize = s.partSize
	}
	info, err := s.client.PutObject(ctx, bucket, objectKey, reader, sizeBytes, opts)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("minio put object failed: %w", err)
	}
	return ObjectInfo{
		Bucket:    info.Bucket,
		Key:       info.Key,
		SizeBytes: info.Size,
		ETag:      info.ETag,
	}, nil
}

func (s *MinIOStorage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if s.credsErr != nil {
		return false, s.credsErr
	}
	ok, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("minio bucket exists failed: %w", err)
	}
	return ok, nil
}
