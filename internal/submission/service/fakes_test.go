package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"submitrelay/internal/common/mail"
	"submitrelay/internal/common/storage"
	"submitrelay/internal/submission/model"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 15, 123_000_000, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeRecordRepo struct {
	mu      sync.Mutex
	records []model.AuditRecord
	err     error
}

func (f *fakeRecordRepo) Insert(ctx context.Context, record model.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRecordRepo) all() []model.AuditRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.AuditRecord(nil), f.records...)
}

type storedObject struct {
	data        []byte
	sizeBytes   int64
	contentType string
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]storedObject
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]storedObject)}
}

func (f *fakeStorage) PutObject(ctx context.Context, bucket, objectKey string, reader io.Reader, sizeBytes int64, contentType string) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return storage.ObjectInfo{}, f.err
	}
	f.objects[bucket+"/"+objectKey] = storedObject{data: data, sizeBytes: sizeBytes, contentType: contentType}
	return storage.ObjectInfo{Bucket: bucket, Key: objectKey, SizeBytes: int64(len(data))}, nil
}

func (f *fakeStorage) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *fakeStorage) get(path string) (storedObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[path]
	return obj, ok
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mail.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "<queued@mg.example.com>", nil
}

func (f *fakeMailer) messages() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

// trackedBody records whether Close was called.
type trackedBody struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func (b *trackedBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *trackedBody) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func snsEvent(t *testing.T, messageID string, payload interface{}) []byte {
	t.Helper()
	message, ok := payload.(string)
	if !ok {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload failed: %v", err)
		}
		message = string(data)
	}
	sns := map[string]interface{}{
		"Type":    "Notification",
		"Message": message,
	}
	if messageID != "" {
		sns["MessageId"] = messageID
	}
	envelope := map[string]interface{}{
		"Records": []interface{}{
			map[string]interface{}{
				"EventSource":  "aws:sns",
				"EventVersion": "1.0",
				"Sns":          sns,
			},
		},
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope failed: %v", err)
	}
	return data
}

func submissionPayload(url string) map[string]interface{} {
	return map[string]interface{}{
		"submissionUrl": url,
		"userEmail":     "u@d.com",
		"assignmentId":  "A1",
		"userId":        "42",
	}
}
