// Package svc wires configured clients into the submission workflow.
package svc

import (
	"context"
	"errors"
	"fmt"
	"time"

	cachex "submitrelay/internal/common/cache"
	"submitrelay/internal/common/db"
	"submitrelay/internal/common/mail"
	"submitrelay/internal/common/storage"
	"submitrelay/internal/config"
	"submitrelay/internal/submission/repository"
	"submitrelay/internal/submission/service"
	"submitrelay/pkg/utils/logger"

	"go.uber.org/zap"
)

// ServiceContext owns the long-lived clients shared by every invocation.
type ServiceContext struct {
	Config   *config.AppConfig
	Workflow *service.Workflow
	Status   *repository.StatusRepository

	closers []func() error
}

// NewServiceContext builds clients for the configured drivers.
// Collaborators left unconfigured are skipped, and the workflow reports those steps as failed.
func NewServiceContext(ctx context.Context, cfg *config.AppConfig) (*ServiceContext, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	sc := &ServiceContext{Config: cfg}

	records, err := sc.newRecordRepository(ctx)
	if err != nil {
		_ = sc.Close()
		return nil, err
	}
	store, err := sc.newObjectStorage(ctx)
	if err != nil {
		_ = sc.Close()
		return nil, err
	}
	mailer, err := newMailer(ctx, cfg)
	if err != nil {
		_ = sc.Close()
		return nil, err
	}
	if err := sc.initStatus(); err != nil {
		_ = sc.Close()
		return nil, err
	}

	wfCfg := service.Config{
		Fetcher:  service.NewFetcher(nil, cfg.Fetch.Timeout),
		Notifier: service.NewNotifier(mailer, cfg.Mail.Sender),
	}
	if records != nil {
		wfCfg.Recorder = service.NewRecordWriter(records, cfg.Storage.Bucket).WithTimeout(cfg.Records.Timeout)
	}
	if store != nil {
		checkBucket(ctx, store, cfg.Storage.Bucket)
		wfCfg.Uploader = service.NewUploader(store, cfg.Storage.Bucket)
	}
	if sc.Status != nil {
		wfCfg.Status = sc.Status
	}
	sc.Workflow = service.NewWorkflow(wfCfg)
	return sc, nil
}

// Close releases every client opened by NewServiceContext.
func (sc *ServiceContext) Close() error {
	var errs []error
	for i := len(sc.closers) - 1; i >= 0; i-- {
		if err := sc.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	sc.closers = nil
	return errors.Join(errs...)
}

func (sc *ServiceContext) newRecordRepository(ctx context.Context) (repository.RecordRepository, error) {
	cfg := sc.Config.Records
	var (
		database db.Database
		err      error
	)
	switch cfg.Driver {
	case "":
		logger.Warn(ctx, "records driver is empty, audit records are disabled")
		return nil, nil
	case config.RecordsDynamoDB:
		repo, err := repository.NewDynamoRecordRepository(ctx, sc.Config.AWS, cfg.DynamoTable)
		if err != nil {
			return nil, fmt.Errorf("init dynamodb record store failed: %w", err)
		}
		return repo, nil
	case config.RecordsMySQL:
		database, err = db.NewMySQL(cfg.MySQL)
	case config.RecordsPostgres:
		database, err = db.NewPostgreSQL(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown records driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s record store failed: %w", cfg.Driver, err)
	}
	sc.closers = append(sc.closers, database.Close)

	repo := repository.NewSQLRecordRepository(database, cfg.Table)
	if cfg.AutoMigrate {
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (sc *ServiceContext) newObjectStorage(ctx context.Context) (storage.ObjectStorage, error) {
	cfg := sc.Config
	switch cfg.Storage.Driver {
	case "":
		logger.Warn(ctx, "storage driver is empty, uploads are disabled")
		return nil, nil
	case config.StorageMinIO:
		store, err := storage.NewMinIOStorage(cfg.Storage.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init minio storage failed: %w", err)
		}
		return store, nil
	case config.StorageS3:
		store, err := storage.NewS3Storage(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage failed: %w", err)
		}
		return store, nil
	case config.StorageGCS:
		store := storage.NewGCSStorage(ctx, cfg.Storage.GCS)
		sc.closers = append(sc.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// checkBucket logs a missing or unreachable bucket and never fails startup.
func checkBucket(ctx context.Context, store storage.ObjectStorage, bucket string) {
	if bucket == "" {
		logger.Warn(ctx, "storage bucket is empty, uploads will fail")
		return
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := store.BucketExists(checkCtx, bucket)
	if err != nil {
		logger.Warn(ctx, "check storage bucket failed", zap.String("bucket", bucket), zap.Error(err))
		return
	}
	if !exists {
		logger.Warn(ctx, "storage bucket does not exist", zap.String("bucket", bucket))
	}
}

func newMailer(ctx context.Context, cfg *config.AppConfig) (mail.Mailer, error) {
	if cfg.Mail.Domain == "" {
		logger.Warn(ctx, "mail domain is empty, notifications are disabled")
		return nil, nil
	}
	if cfg.Mail.APIKey == "" {
		logger.Warn(ctx, "mail api key is empty, notifications will fail", zap.String("domain", cfg.Mail.Domain))
	}
	mailer, err := mail.NewMailgunMailer(cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("init mailgun failed: %w", err)
	}
	return mailer, nil
}

func (sc *ServiceContext) initStatus() error {
	cfg := sc.Config.Status
	if !cfg.Enabled {
		return nil
	}
	redisCfg := cfg.Redis
	client, err := cachex.NewRedisCacheWithConfig(&redisCfg)
	if err != nil {
		return fmt.Errorf("init status cache failed: %w", err)
	}
	sc.closers = append(sc.closers, client.Close)
	sc.Status = repository.NewStatusRepository(client, cfg.TTL)
	logger.Info(context.Background(), "status store enabled", zap.String("addr", redisCfg.Addr), zap.Duration("ttl", cfg.TTL))
	return nil
}
