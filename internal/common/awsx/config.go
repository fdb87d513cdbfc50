// Package awsx builds aws-sdk-go-v2 configuration shared by the S3 and DynamoDB clients.
package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Config holds AWS client settings.
// Empty credentials fall back to the default provider chain (env, shared config, IAM role).
type Config struct {
	Region          string `yaml:"region" env:"REGION"`
	Endpoint        string `yaml:"endpoint" env:"AWS_ENDPOINT_URL"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UsePathStyle    bool   `yaml:"usePathStyle"`
}

// Load resolves an aws.Config from cfg.
func Load(ctx context.Context, cfg Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config failed: %w", err)
	}
	return awsCfg, nil
}
