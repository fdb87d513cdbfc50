package service

import (
	"context"
	"time"

	"submitrelay/internal/submission/model"
	"submitrelay/internal/submission/repository"
	"submitrelay/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatusStore caches the final summary of an invocation.
type StatusStore interface {
	Save(ctx context.Context, summary model.Summary) error
	Get(ctx context.Context, invocationID string) (model.Summary, error)
}

var _ StatusStore = (*repository.StatusRepository)(nil)

// Config holds workflow dependencies.
type Config struct {
	Fetcher  *Fetcher
	Recorder *RecordWriter
	Uploader *Uploader
	Notifier *Notifier
	// Status is optional.
	Status StatusStore
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Workflow processes one submission notification per call.
type Workflow struct {
	fetcher  *Fetcher
	recorder *RecordWriter
	uploader *Uploader
	notifier *Notifier
	status   StatusStore
	now      func() time.Time
}

// NewWorkflow creates a workflow from cfg.
func NewWorkflow(cfg Config) *Workflow {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(nil, 0)
	}
	if cfg.Uploader != nil {
		cfg.Uploader.now = now
	}
	return &Workflow{
		fetcher:  fetcher,
		recorder: cfg.Recorder,
		uploader: cfg.Uploader,
		notifier: cfg.Notifier,
		status:   cfg.Status,
		now:      now,
	}
}

// StatusStore returns the configured status store, or nil.
func (w *Workflow) StatusStore() StatusStore {
	return w.status
}

// Handle runs one invocation for a raw notification envelope.
// It never fails: every step's outcome is folded into the returned summary.
func (w *Workflow) Handle(ctx context.Context, raw []byte) model.Summary {
	summary := model.Summary{StartedAt: w.now().UTC()}

	req, invocationID, err := ParseNotification(raw)
	if invocationID == "" {
		invocationID = uuid.NewString()
	}
	summary.InvocationID = invocationID
	ctx = logger.WithInvocationID(ctx, invocationID)
	if err != nil {
		summary.ParseError = err.Error()
		logger.Error(ctx, "parse submission notification failed", zap.Error(err))
		return w.finish(ctx, summary)
	}
	summary.Parsed = true
	logger.Info(ctx, "submission notification received",
		zap.String("assignment_id", req.AssignmentID),
		zap.String("user_id", req.UserID),
		zap.String("email", req.UserEmail),
		zap.String("url", req.SubmissionURL),
	)

	summary.RecordWritten = w.recorder.Record(ctx, req, w.now())

	fetched := w.fetcher.Fetch(ctx, req)
	notifyData := NotifyContext{
		AssignmentID:  req.AssignmentID,
		SubmissionURL: req.SubmissionURL,
		UserEmail:     req.UserEmail,
	}

	if !fetched.OK() {
		summary.FetchError = fetched.Reason()
		logger.Warn(ctx, "submission artifact unavailable", zap.String("reason", summary.FetchError))
		summary.EmailStatus = w.notifier.Notify(ctx, req.UserEmail, model.OutcomeFailure, notifyData)
		return w.finish(ctx, summary)
	}

	var (
		upload    model.UploadOutcome
		emailSent bool
	)
	var g errgroup.Group
	g.Go(func() error {
		upload = w.upload(ctx, fetched, req)
		return nil
	})
	g.Go(func() error {
		emailSent = w.notifier.Notify(ctx, req.UserEmail, model.OutcomeSuccess, notifyData)
		return nil
	})
	_ = g.Wait()

	summary.SubmissionStatus = upload.Status
	summary.StorageStatus = upload.Status
	summary.StoragePath = upload.Path
	summary.EmailStatus = emailSent
	return w.finish(ctx, summary)
}

func (w *Workflow) upload(ctx context.Context, fetched model.FetchOutcome, req model.SubmissionRequest) model.UploadOutcome {
	if w.uploader == nil {
		_ = fetched.Close()
		logger.Error(ctx, "object storage is not configured, skip upload")
		return model.UploadOutcome{}
	}
	return w.uploader.Upload(ctx, fetched.Body, fetched.ContentLength, req.AssignmentID, req.UserID, req.UserEmail)
}

func (w *Workflow) finish(ctx context.Context, summary model.Summary) model.Summary {
	summary.FinishedAt = w.now().UTC()
	logger.Info(ctx, "submission invocation finished",
		zap.Bool("parsed", summary.Parsed),
		zap.Bool("submission_status", summary.SubmissionStatus),
		zap.Bool("storage_status", summary.StorageStatus),
		zap.Bool("email_status", summary.EmailStatus),
		zap.Bool("record_written", summary.RecordWritten),
		zap.String("fetch_error", summary.FetchError),
		zap.String("storage_path", summary.StoragePath),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	if w.status != nil {
		if err := w.status.Save(ctx, summary); err != nil {
			logger.Warn(ctx, "save invocation status failed", zap.Error(err))
		}
	}
	return summary
}
