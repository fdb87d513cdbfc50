package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"submitrelay/internal/common/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	mu        sync.Mutex
	puts      []*s3.PutObjectInput
	bodies    []string
	putErr    error
	headErr   error
	multipart int
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, string(data))
	return &s3.PutObjectOutput{ETag: aws.String(`"etag-1"`)}, nil
}

func (f *fakeS3) UploadPart(ctx context.Context, in *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	f.multipart++
	return &s3.UploadPartOutput{ETag: aws.String("part")}, nil
}

func (f *fakeS3) CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	f.multipart++
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil
}

func (f *fakeS3) CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (f *fakeS3) AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestS3StoragePutObject(t *testing.T) {
	cases := []struct {
		name       string
		size       int64
		wantLength bool
	}{
		{name: "known length", size: 7, wantLength: true},
		{name: "unknown length", size: -1, wantLength: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeS3{}
			store := storage.NewS3StorageWithClient(client)

			info, err := store.PutObject(context.Background(), "bucket", "u/A1/42_x.zip", strings.NewReader("zipdata"), tc.size, "application/zip")
			if err != nil {
				t.Fatalf("put object failed: %v", err)
			}
			if info.Bucket != "bucket" || info.Key != "u/A1/42_x.zip" || info.ETag != `"etag-1"` {
				t.Fatalf("unexpected object info %+v", info)
			}
			if len(client.puts) != 1 || client.multipart != 0 {
				t.Fatalf("expected a single PutObject, got puts=%d multipart=%d", len(client.puts), client.multipart)
			}
			in := client.puts[0]
			if aws.ToString(in.ContentType) != "application/zip" {
				t.Fatalf("unexpected content type %q", aws.ToString(in.ContentType))
			}
			if tc.wantLength && aws.ToInt64(in.ContentLength) != tc.size {
				t.Fatalf("content length %d, want %d", aws.ToInt64(in.ContentLength), tc.size)
			}
			if client.bodies[0] != "zipdata" {
				t.Fatalf("unexpected body %q", client.bodies[0])
			}
		})
	}
}

func TestS3StoragePutObjectErrors(t *testing.T) {
	store := storage.NewS3StorageWithClient(&fakeS3{putErr: errors.New("AccessDenied")})

	if _, err := store.PutObject(context.Background(), "bucket", "key", strings.NewReader("x"), 1, ""); err == nil {
		t.Fatalf("expected upload error")
	}
	if _, err := store.PutObject(context.Background(), "", "key", strings.NewReader("x"), 1, ""); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
	if _, err := store.PutObject(context.Background(), "bucket", "", strings.NewReader("x"), 1, ""); err == nil {
		t.Fatalf("expected error for missing key")
	}
	if _, err := store.PutObject(context.Background(), "bucket", "key", nil, 1, ""); err == nil {
		t.Fatalf("expected error for nil reader")
	}
}

func TestS3StorageBucketExists(t *testing.T) {
	ok, err := storage.NewS3StorageWithClient(&fakeS3{}).BucketExists(context.Background(), "bucket")
	if err != nil || !ok {
		t.Fatalf("expected bucket to exist, got ok=%v err=%v", ok, err)
	}
	ok, err = storage.NewS3StorageWithClient(&fakeS3{headErr: errors.New("NotFound")}).BucketExists(context.Background(), "bucket")
	if err == nil || ok {
		t.Fatalf("expected missing bucket, got ok=%v err=%v", ok, err)
	}
}
