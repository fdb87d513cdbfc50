package middleware

import (
	"context"
	"strings"

	"submitrelay/pkg/utils/contextkey"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceIDHeader   = "X-Trace-Id"
	requestIDHeader = "X-Request-Id"

	traceIDContextKey   = "trace_id"
	requestIDContextKey = "request_id"
)

// TraceContextConfig controls how trace and request ids are extracted and written.
type TraceContextConfig struct {
	// TrustInboundHeaders keeps ids supplied by the caller instead of always generating new ones.
	TrustInboundHeaders bool
}

// TraceContextMiddleware ensures trace/request id are in context and response headers.
func TraceContextMiddleware() gin.HandlerFunc {
	return TraceContextMiddlewareWithConfig(TraceContextConfig{TrustInboundHeaders: true})
}

// TraceContextMiddlewareWithConfig is the configurable version of TraceContextMiddleware.
func TraceContextMiddlewareWithConfig(cfg TraceContextConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := inboundID(c, traceIDHeader, cfg.TrustInboundHeaders)
		requestID := inboundID(c, requestIDHeader, cfg.TrustInboundHeaders)

		c.Set(traceIDContextKey, traceID)
		c.Set(requestIDContextKey, requestID)

		ctx := context.WithValue(c.Request.Context(), contextkey.TraceID, traceID)
		ctx = context.WithValue(ctx, contextkey.RequestID, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Writer.Header().Set(traceIDHeader, traceID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}

func inboundID(c *gin.Context, header string, trust bool) string {
	if trust {
		if id := strings.TrimSpace(c.GetHeader(header)); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
