package service_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"submitrelay/internal/common/cache"
	"submitrelay/internal/submission/repository"
	"submitrelay/internal/submission/service"
	"submitrelay/internal/testutil"
	"submitrelay/pkg/utils/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type workflowFixture struct {
	records  *fakeRecordRepo
	storage  *fakeStorage
	mailer   *fakeMailer
	server   *httptest.Server
	hits     *int32
	workflow *service.Workflow
	status   *repository.StatusRepository
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	var hits int32
	f := &workflowFixture{
		records: &fakeRecordRepo{},
		storage: newFakeStorage(),
		mailer:  &fakeMailer{},
		hits:    &hits,
	}
	f.server = newArtifactServer(t, f.hits)

	mr := miniredis.RunT(t)
	redisCache, err := cache.NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	testutil.MustNoError(t, err)
	t.Cleanup(func() { _ = redisCache.Close() })
	f.status = repository.NewStatusRepository(redisCache, time.Hour)

	f.workflow = service.NewWorkflow(service.Config{
		Fetcher:  service.NewFetcher(f.server.Client(), 0),
		Recorder: service.NewRecordWriter(f.records, "bucket"),
		Uploader: service.NewUploader(f.storage, "bucket"),
		Notifier: service.NewNotifier(f.mailer, "no-reply@mg.example.com"),
		Status:   f.status,
		Clock:    fixedClock,
	})
	return f
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.GetLogger()
	logger.SetLogger(logger.NewWithCore(core))
	t.Cleanup(func() { logger.SetLogger(previous) })
	return logs
}

func TestWorkflowSuccess(t *testing.T) {
	logs := observeLogs(t)
	f := newWorkflowFixture(t)

	summary := f.workflow.Handle(context.Background(), snsEvent(t, "msg-1", submissionPayload(f.server.URL+"/a.pdf")))

	testutil.AssertEqual(t, summary.InvocationID, "msg-1")
	testutil.AssertTrue(t, summary.Parsed, "payload should parse")
	testutil.AssertTrue(t, summary.RecordWritten, "record should be written")
	testutil.AssertTrue(t, summary.SubmissionStatus, "submission should succeed")
	testutil.AssertTrue(t, summary.StorageStatus, "storage should succeed")
	testutil.AssertTrue(t, summary.EmailStatus, "email should be sent")
	testutil.AssertEqual(t, summary.FetchError, "")
	testutil.AssertEqual(t, summary.StoragePath, "bucket/u/A1/42_20261016T093015123Z.zip")

	testutil.AssertEqual(t, len(f.records.all()), 1)
	testutil.AssertEqual(t, f.storage.count(), 1)
	obj, ok := f.storage.get("bucket/u/A1/42_20261016T093015123Z.zip")
	testutil.AssertTrue(t, ok, "object should be stored under the derived key")
	testutil.AssertEqual(t, string(obj.data), "PDFDATA")

	sent := f.mailer.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sent))
	}
	testutil.AssertEqual(t, sent[0].To[0], "u@d.com")
	testutil.AssertEqual(t, sent[0].Subject, "Assignment submission accepted")

	final := logs.FilterMessage("submission invocation finished").All()
	if len(final) != 1 {
		t.Fatalf("expected one final status line, got %d", len(final))
	}
	idFields := 0
	for _, field := range final[0].Context {
		if field.Key == "invocation_id" {
			idFields++
		}
	}
	testutil.AssertEqual(t, idFields, 1)
	fields := final[0].ContextMap()
	testutil.AssertEqual(t, fields["invocation_id"], "msg-1")
	testutil.AssertEqual(t, fields["submission_status"], true)
	testutil.AssertEqual(t, fields["email_status"], true)

	stored, err := f.status.Get(context.Background(), "msg-1")
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, stored.StoragePath, summary.StoragePath)
}

func TestWorkflowEmptyURL(t *testing.T) {
	f := newWorkflowFixture(t)

	summary := f.workflow.Handle(context.Background(), snsEvent(t, "msg-2", submissionPayload("")))

	testutil.AssertTrue(t, summary.Parsed, "payload should parse")
	testutil.AssertTrue(t, summary.RecordWritten, "record should be written for failed fetches")
	testutil.AssertFalse(t, summary.SubmissionStatus, "submission should fail")
	testutil.AssertFalse(t, summary.StorageStatus, "nothing should be stored")
	testutil.AssertTrue(t, summary.EmailStatus, "failure email should be sent")
	testutil.AssertEqual(t, summary.FetchError, "Empty submissionURL")

	testutil.AssertEqual(t, atomic.LoadInt32(f.hits), int32(0))
	testutil.AssertEqual(t, f.storage.count(), 0)
	testutil.AssertEqual(t, len(f.records.all()), 1)
	sent := f.mailer.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sent))
	}
	testutil.AssertEqual(t, sent[0].Subject, "Assignment submission failed")
}

func TestWorkflowFetchFailures(t *testing.T) {
	cases := []struct {
		name       string
		path       string
		wantReason string
	}{
		{name: "disallowed extension", path: "/a.exe", wantReason: "disallowed extension"},
		{name: "empty content", path: "/empty.zip", wantReason: "empty content"},
		{name: "not found", path: "/missing.zip", wantReason: "unexpected status 404"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newWorkflowFixture(t)
			summary := f.workflow.Handle(context.Background(), snsEvent(t, "msg", submissionPayload(f.server.URL+tc.path)))

			testutil.AssertEqual(t, summary.FetchError, tc.wantReason)
			testutil.AssertFalse(t, summary.SubmissionStatus, "submission should fail")
			testutil.AssertEqual(t, f.storage.count(), 0)
			testutil.AssertEqual(t, len(f.records.all()), 1)
			sent := f.mailer.messages()
			if len(sent) != 1 || sent[0].Subject != "Assignment submission failed" {
				t.Fatalf("expected one failure email, got %+v", sent)
			}
		})
	}
}

func TestWorkflowMalformedEnvelope(t *testing.T) {
	logs := observeLogs(t)
	f := newWorkflowFixture(t)

	summary := f.workflow.Handle(context.Background(), []byte(`{"Records":[{"Sns":{"MessageId":"bad-1","Message":"not json"}}]}`))

	testutil.AssertFalse(t, summary.Parsed, "payload should not parse")
	testutil.AssertEqual(t, summary.InvocationID, "bad-1")
	testutil.AssertTrue(t, summary.ParseError != "", "parse error should be reported")
	testutil.AssertFalse(t, summary.RecordWritten, "no record for unparsed payloads")
	testutil.AssertEqual(t, len(f.records.all()), 0)
	testutil.AssertEqual(t, len(f.mailer.messages()), 0)
	testutil.AssertEqual(t, f.storage.count(), 0)
	testutil.AssertEqual(t, logs.FilterMessage("submission invocation finished").Len(), 1)

	garbage := f.workflow.Handle(context.Background(), []byte("garbage"))
	testutil.AssertFalse(t, garbage.Parsed, "garbage should not parse")
	testutil.AssertTrue(t, garbage.InvocationID != "", "an invocation id is always assigned")
}

func TestWorkflowPartialFailures(t *testing.T) {
	t.Run("upload fails but success email is sent", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.storage.err = errors.New("SlowDown")

		summary := f.workflow.Handle(context.Background(), snsEvent(t, "msg", submissionPayload(f.server.URL+"/a.zip")))
		testutil.AssertFalse(t, summary.SubmissionStatus, "upload failure should fail the submission")
		testutil.AssertFalse(t, summary.StorageStatus, "storage status mirrors submission status")
		testutil.AssertEqual(t, summary.StoragePath, "")
		testutil.AssertTrue(t, summary.EmailStatus, "success email should still be sent")
		testutil.AssertEqual(t, f.mailer.messages()[0].Subject, "Assignment submission accepted")
	})

	t.Run("record and email failures do not stop the upload", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.records.err = errors.New("table not found")
		f.mailer.err = errors.New("mailgun down")

		summary := f.workflow.Handle(context.Background(), snsEvent(t, "msg", submissionPayload(f.server.URL+"/a.zip")))
		testutil.AssertFalse(t, summary.RecordWritten, "record failure should be reported")
		testutil.AssertFalse(t, summary.EmailStatus, "email failure should be reported")
		testutil.AssertTrue(t, summary.SubmissionStatus, "upload should still succeed")
		testutil.AssertEqual(t, f.storage.count(), 1)
	})
}

func TestWorkflowWithoutUploaderClosesStream(t *testing.T) {
	var closed int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("zipdata"))
	}))
	defer server.Close()

	transport := &closeTrackingTransport{base: http.DefaultTransport, closed: &closed}
	mailer := &fakeMailer{}
	workflow := service.NewWorkflow(service.Config{
		Fetcher:  service.NewFetcher(&http.Client{Transport: transport}, 0),
		Notifier: service.NewNotifier(mailer, "no-reply@mg.example.com"),
		Clock:    fixedClock,
	})

	summary := workflow.Handle(context.Background(), snsEvent(t, "msg", submissionPayload(server.URL+"/a.zip")))
	testutil.AssertFalse(t, summary.SubmissionStatus, "upload should fail without storage")
	testutil.AssertFalse(t, summary.RecordWritten, "record should fail without a store")
	testutil.AssertTrue(t, summary.EmailStatus, "success email is still sent")
	testutil.AssertEqual(t, atomic.LoadInt32(&closed), int32(1))
}

type closeTrackingTransport struct {
	base   http.RoundTripper
	closed *int32
}

func (c *closeTrackingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = &countingCloser{ReadCloser: resp.Body, closed: c.closed}
	return resp, nil
}

type countingCloser struct {
	io.ReadCloser
	closed *int32
}

func (c *countingCloser) Close() error {
	atomic.AddInt32(c.closed, 1)
	return c.ReadCloser.Close()
}
