package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"submitrelay/internal/config"
	"submitrelay/internal/submission/service"
	"submitrelay/internal/svc"
	"submitrelay/pkg/utils/contextkey"
	"submitrelay/pkg/utils/logger"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"
)

const configPathEnv = "SUBMITRELAY_CONFIG"

func main() {
	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	appCfg, err := config.Load(configPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		os.Exit(1)
	}
	if appCfg.Logger.Format == "" {
		appCfg.Logger.Format = "json"
	}
	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}

	svcCtx, err := svc.NewServiceContext(context.Background(), appCfg)
	if err != nil {
		logger.Error(context.Background(), "init service context failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	lambda.Start(newHandler(svcCtx.Workflow))
}

// newHandler adapts the workflow to the lambda runtime. It never returns an error,
// so SNS does not redeliver a notification the workflow already handled.
func newHandler(workflow *service.Workflow) func(ctx context.Context, event json.RawMessage) error {
	return func(ctx context.Context, event json.RawMessage) error {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			ctx = context.WithValue(ctx, contextkey.RequestID, lc.AwsRequestID)
		}
		workflow.Handle(ctx, event)
		_ = logger.Sync()
		return nil
	}
}
