package main

import (
	"context"
	"net/http"
	"time"

	commonmw "submitrelay/internal/common/http/middleware"
	"submitrelay/internal/common/mq"
	"submitrelay/internal/config"
	"submitrelay/internal/submission/controller"
	"submitrelay/internal/submission/service"
	"submitrelay/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// notificationHandler feeds Kafka message values to the workflow.
// It always returns nil so the message is committed whatever the outcome.
func notificationHandler(workflow *service.Workflow) mq.HandlerFunc {
	return func(ctx context.Context, msg *mq.Message) error {
		logger.Debug(ctx, "notification message received",
			zap.String("message_id", msg.ID),
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
		summary := workflow.Handle(ctx, msg.Body)
		if !summary.Parsed {
			logger.Warn(ctx, "notification message dropped",
				zap.String("message_id", msg.ID),
				zap.String("invocation_id", summary.InvocationID),
			)
		}
		return nil
	}
}

func buildHTTPServer(cfg config.ServerConfig, workflow *service.Workflow) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmw.TraceContextMiddlewareWithConfig(commonmw.TraceContextConfig{
		TrustInboundHeaders: cfg.TrustInboundTraceHeaders,
	}))
	router.Use(requestLogger())

	controller.RegisterRoutes(router, controller.NewNotificationController(workflow))

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
