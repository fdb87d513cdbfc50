package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"submitrelay/internal/common/mq"
	"submitrelay/internal/config"
	"submitrelay/internal/svc"
	"submitrelay/pkg/utils/logger"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := config.Load(*configPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	svcCtx, err := svc.NewServiceContext(context.Background(), appCfg)
	if err != nil {
		logger.Error(context.Background(), "init service context failed", zap.Error(err))
		return
	}
	defer func() {
		_ = svcCtx.Close()
	}()

	var consumer mq.Consumer
	if appCfg.Consumer.Enabled {
		kafkaConsumer, err := mq.NewKafkaConsumer(appCfg.Consumer.Kafka)
		if err != nil {
			logger.Error(context.Background(), "init kafka failed", zap.Error(err))
			return
		}
		opts := appCfg.Consumer.Subscribe
		if err := kafkaConsumer.Subscribe(context.Background(), appCfg.Consumer.Topic, notificationHandler(svcCtx.Workflow), &opts); err != nil {
			logger.Error(context.Background(), "subscribe notification topic failed", zap.Error(err))
			return
		}
		if err := kafkaConsumer.Start(); err != nil {
			logger.Error(context.Background(), "start kafka consumer failed", zap.Error(err))
			return
		}
		consumer = kafkaConsumer
		logger.Info(context.Background(), "notification consumer started",
			zap.String("topic", appCfg.Consumer.Topic),
			zap.Int("concurrency", opts.Concurrency),
		)
	}

	httpServer := buildHTTPServer(appCfg.Server, svcCtx.Workflow)
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "submission http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), appCfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			logger.Error(context.Background(), "kafka consumer stop failed", zap.Error(err))
		}
	}
}
