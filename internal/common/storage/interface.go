package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the object storage operations required by the submission relay.
type ObjectStorage interface {
	// PutObject streams reader into bucket/objectKey.
	// sizeBytes may be -1 when the length is unknown.
	PutObject(ctx context.Context, bucket, objectKey string, reader io.Reader, sizeBytes int64, contentType string) (ObjectInfo, error)

	// BucketExists reports whether the bucket is reachable with the configured credentials.
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket    string
	Key       string
	SizeBytes int64
	ETag      string
}
