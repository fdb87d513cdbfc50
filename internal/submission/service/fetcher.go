package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"submitrelay/internal/submission/model"
	appErr "submitrelay/pkg/errors"
	"submitrelay/pkg/utils/logger"

	"go.uber.org/zap"
)

const defaultFetchTimeout = 60 * time.Second

// AllowedExtensions are the substrings a submission URL must contain.
var AllowedExtensions = []string{"zip", "pdf", "txt", "doc"}

// Fetcher downloads submission artifacts as streams.
type Fetcher struct {
	client  *http.Client
	allowed []string
}

// NewFetcher creates a fetcher. A nil client gets a default client with the given timeout.
func NewFetcher(client *http.Client, timeout time.Duration) *Fetcher {
	if client == nil {
		if timeout <= 0 {
			timeout = defaultFetchTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{client: client, allowed: AllowedExtensions}
}

// Fetch validates the submission URL and opens the artifact stream.
func (f *Fetcher) Fetch(ctx context.Context, req model.SubmissionRequest) model.FetchOutcome {
	url := req.SubmissionURL
	if url == "" {
		return model.FetchOutcome{Err: appErr.New(appErr.SubmissionURLEmpty)}
	}
	if !f.hasAllowedExtension(url) {
		return model.FetchOutcome{Err: appErr.New(appErr.SubmissionExtensionDisallowed).WithDetail("url", url)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.FetchOutcome{Err: appErr.Wrap(err, appErr.ArtifactDownloadFailed)}
	}
	resp, err := f.client.Do(httpReq)
	if err != nil {
		logger.Warn(ctx, "download submission failed", zap.String("url", url), zap.Error(err))
		return model.FetchOutcome{Err: appErr.Wrap(err, appErr.ArtifactDownloadFailed)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		logger.Warn(ctx, "download submission rejected", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return model.FetchOutcome{Err: appErr.New(appErr.ArtifactDownloadFailed).
			WithMessage(fmt.Sprintf("unexpected status %d", resp.StatusCode)).
			WithDetail("status", resp.StatusCode)}
	}
	if resp.Body == nil || resp.Body == http.NoBody || resp.ContentLength == 0 {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
		logger.Warn(ctx, "submission artifact is empty", zap.String("url", url))
		return model.FetchOutcome{Err: appErr.New(appErr.ArtifactEmpty)}
	}

	logger.Info(ctx, "downloaded submission artifact",
		zap.Int("status", resp.StatusCode),
		zap.String("url", resp.Request.URL.String()),
		zap.Int64("content_length", resp.ContentLength),
	)
	return model.FetchOutcome{Body: resp.Body, ContentLength: resp.ContentLength}
}

func (f *Fetcher) hasAllowedExtension(url string) bool {
	for _, ext := range f.allowed {
		if strings.Contains(url, ext) {
			return true
		}
	}
	return false
}
