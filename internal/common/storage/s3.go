package storage

import (
	"context"
	"fmt"
	"io"

	"submitrelay/internal/common/awsx"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Storage.
type S3API interface {
	manager.UploadAPIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// S3Storage implements ObjectStorage on AWS S3.
// Uploads go through manager.Uploader so unknown-length streams are chunked without buffering the whole body.
type S3Storage struct {
	client   S3API
	uploader *manager.Uploader
}

// NewS3Storage builds an S3 client from cfg.
func NewS3Storage(ctx context.Context, cfg awsx.Config) (*S3Storage, error) {
	awsCfg, err := awsx.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3StorageWithClient(client), nil
}

// NewS3StorageWithClient wraps an existing client.
func NewS3StorageWithClient(client S3API) *S3Storage {
	return &S3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
	}
}

func (s *S3Storage) PutObject(ctx context.Context, bucket, objectKey string, reader io.Reader, sizeBytes int64, contentType string) (ObjectInfo, error) {
	if reader == nil {
		return ObjectInfo{}, fmt.Errorf("reader is required")
	}
	if bucket == "" {
		return ObjectInfo{}, fmt.Errorf("bucket is required")
	}
	if objectKey == "" {
		return ObjectInfo{}, fmt.Errorf("objectKey is required")
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
		Body:   reader,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if sizeBytes >= 0 {
		input.ContentLength = aws.Int64(sizeBytes)
	}
	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("s3 upload failed: %w", err)
	}
	return ObjectInfo{
		Bucket:    bucket,
		Key:       aws.ToString(out.Key),
		SizeBytes: sizeBytes,
		ETag:      aws.ToString(out.ETag),
	}, nil
}

func (s *S3Storage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return false, fmt.Errorf("s3 head bucket failed: %w", err)
	}
	return true, nil
}
