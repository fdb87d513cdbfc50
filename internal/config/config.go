// Package config loads submission relay settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"submitrelay/internal/common/awsx"
	"submitrelay/internal/common/cache"
	"submitrelay/internal/common/db"
	"submitrelay/internal/common/mail"
	"submitrelay/internal/common/mq"
	"submitrelay/internal/common/storage"
	"submitrelay/pkg/utils/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "configs/submission_service.yaml"

	defaultHTTPAddr        = "0.0.0.0:8090"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 90 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	defaultFetchTimeout  = 60 * time.Second
	defaultRecordsTable  = "submission_records"
	defaultStatusTTL     = 24 * time.Hour
	defaultMailTimeout   = 10 * time.Second
	defaultConsumerTopic = "submission.notifications"
)

// Storage drivers.
const (
	StorageMinIO = "minio"
	StorageS3    = "s3"
	StorageGCS   = "gcs"
)

// Record store drivers.
const (
	RecordsMySQL    = "mysql"
	RecordsPostgres = "postgres"
	RecordsDynamoDB = "dynamodb"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// TrustInboundTraceHeaders reuses X-Trace-Id / X-Request-Id from callers.
	TrustInboundTraceHeaders bool `yaml:"trustInboundTraceHeaders"`
}

// FetchConfig holds artifact download settings.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"FETCH_TIMEOUT"`
}

// StorageConfig selects and configures the object store.
type StorageConfig struct {
	// Driver is minio, s3, gcs, or empty to disable uploads.
	Driver string              `yaml:"driver" env:"STORAGE_DRIVER"`
	Bucket string              `yaml:"bucket" env:"BUCKET_NAME"`
	MinIO  storage.MinIOConfig `yaml:"minio"`
	GCS    storage.GCSConfig   `yaml:"gcs"`
}

// RecordsConfig selects and configures the audit record store.
type RecordsConfig struct {
	// Driver is mysql, postgres, dynamodb, or empty to disable records.
	Driver      string              `yaml:"driver" env:"RECORDS_DRIVER"`
	Table       string              `yaml:"table" env:"RECORDS_TABLE"`
	DynamoTable string              `yaml:"dynamoTable" env:"DYNAMODB_TABLE_NAME"`
	AutoMigrate bool                `yaml:"autoMigrate"`
	MySQL       db.MySQLConfig      `yaml:"mysql"`
	Postgres    db.PostgreSQLConfig `yaml:"postgres"`
	Timeout     time.Duration       `yaml:"timeout"`
}

// StatusConfig holds invocation status cache settings.
type StatusConfig struct {
	Enabled bool              `yaml:"enabled" env:"STATUS_ENABLED"`
	TTL     time.Duration     `yaml:"ttl"`
	Redis   cache.RedisConfig `yaml:"redis"`
}

// ConsumerConfig holds the Kafka trigger settings.
type ConsumerConfig struct {
	Enabled   bool                `yaml:"enabled" env:"KAFKA_ENABLED"`
	Topic     string              `yaml:"topic" env:"KAFKA_TOPIC"`
	Kafka     mq.KafkaConfig      `yaml:"kafka"`
	Subscribe mq.SubscribeOptions `yaml:"subscribe"`
}

// AppConfig holds submission relay configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logger   logger.Config      `yaml:"logger"`
	AWS      awsx.Config        `yaml:"aws"`
	Fetch    FetchConfig        `yaml:"fetch"`
	Storage  StorageConfig      `yaml:"storage"`
	Records  RecordsConfig      `yaml:"records"`
	Mail     mail.MailgunConfig `yaml:"mail"`
	Status   StatusConfig       `yaml:"status"`
	Consumer ConsumerConfig     `yaml:"consumer"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// Load reads path, applies environment overrides and fills defaults.
// A missing file is not an error when optional is true, so a lambda can run from env alone.
func Load(path string, optional bool) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			if !optional || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config env failed: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = defaultFetchTimeout
	}

	if cfg.Storage.MinIO.Region == "" {
		cfg.Storage.MinIO.Region = cfg.AWS.Region
	}

	if cfg.Records.Table == "" {
		cfg.Records.Table = defaultRecordsTable
	}
	if cfg.Records.DynamoTable == "" {
		cfg.Records.DynamoTable = cfg.Records.Table
	}
	if cfg.Records.Timeout == 0 {
		cfg.Records.Timeout = 5 * time.Second
	}

	if cfg.Mail.Timeout == 0 {
		cfg.Mail.Timeout = defaultMailTimeout
	}

	if cfg.Status.TTL == 0 {
		cfg.Status.TTL = defaultStatusTTL
	}

	if cfg.Consumer.Topic == "" {
		cfg.Consumer.Topic = defaultConsumerTopic
	}
	cfg.Consumer.Subscribe.SetDefaults()
}
