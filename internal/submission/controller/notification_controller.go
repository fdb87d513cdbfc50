package controller

import (
	"context"
	"io"
	"net/http"
	"strings"

	"submitrelay/internal/submission/service"
	appErr "submitrelay/pkg/errors"
	"submitrelay/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

const maxNotificationBytes = 1 << 20

// NotificationController handles the HTTP trigger and status lookups.
type NotificationController struct {
	workflow *service.Workflow
}

// NewNotificationController creates a new NotificationController.
func NewNotificationController(workflow *service.Workflow) *NotificationController {
	return &NotificationController{workflow: workflow}
}

// Receive runs the workflow for one notification envelope.
func (h *NotificationController) Receive(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNotificationBytes))
	if err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	// Uploads outlive the client connection.
	ctx := context.WithoutCancel(c.Request.Context())
	summary := h.workflow.Handle(ctx, raw)
	if !summary.Parsed {
		response.Error(c, appErr.New(appErr.SubmissionPayloadInvalid).
			WithMessage(summary.ParseError).
			WithDetail("invocation_id", summary.InvocationID))
		return
	}
	response.Success(c, summary)
}

// GetStatus returns the cached summary of one invocation.
func (h *NotificationController) GetStatus(c *gin.Context) {
	invocationID := strings.TrimSpace(c.Param("id"))
	if invocationID == "" {
		response.BadRequest(c, "Invalid invocation id")
		return
	}
	store := h.workflow.StatusStore()
	if store == nil {
		response.ErrorWithCode(c, appErr.ServiceUnavailable, "Status store is not configured")
		return
	}
	summary, err := store.Get(c.Request.Context(), invocationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summary)
}

// Health reports liveness.
func (h *NotificationController) Health(c *gin.Context) {
	response.Success(c, HealthResponse{Status: "ok"})
}

// HealthResponse defines the health payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// RegisterRoutes mounts the notification endpoints on router.
func RegisterRoutes(router *gin.Engine, h *NotificationController) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api/v1/notifications")
	api.POST("", h.Receive)
	api.GET("/:id/status", h.GetStatus)
}
