package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"submitrelay/internal/common/cache"
	"submitrelay/internal/submission/model"
	appErr "submitrelay/pkg/errors"
)

const (
	statusKeyPrefix  = "submitrelay:status:"
	defaultStatusTTL = 24 * time.Hour
)

// StatusRepository caches invocation summaries.
type StatusRepository struct {
	cache cache.Cache
	TTL   time.Duration
}

// NewStatusRepository creates a new repository.
func NewStatusRepository(cacheClient cache.Cache, ttl time.Duration) *StatusRepository {
	if ttl <= 0 {
		ttl = defaultStatusTTL
	}
	return &StatusRepository{cache: cacheClient, TTL: ttl}
}

// Get returns the summary of one invocation.
func (r *StatusRepository) Get(ctx context.Context, invocationID string) (model.Summary, error) {
	if invocationID == "" {
		return model.Summary{}, appErr.ValidationError("invocation_id", "required")
	}
	if r.cache == nil {
		return model.Summary{}, appErr.New(appErr.CacheError).WithMessage("cache client is not initialized")
	}
	val, err := r.cache.Get(ctx, statusKeyPrefix+invocationID)
	if err != nil {
		return model.Summary{}, appErr.Wrapf(err, appErr.CacheError, "load status failed")
	}
	if val == "" {
		return model.Summary{}, appErr.New(appErr.SubmissionStatusNotFound).
			WithMessagef("no status recorded for invocation %s", invocationID)
	}
	var summary model.Summary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return model.Summary{}, appErr.Wrapf(err, appErr.CacheError, "decode status failed")
	}
	return summary, nil
}

// Save persists a summary.
func (r *StatusRepository) Save(ctx context.Context, summary model.Summary) error {
	if summary.InvocationID == "" {
		return appErr.ValidationError("invocation_id", "required")
	}
	if r.cache == nil {
		return appErr.New(appErr.CacheError).WithMessage("cache client is not initialized")
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal status failed: %w", err)
	}
	if err := r.cache.Set(ctx, statusKeyPrefix+summary.InvocationID, string(data), r.TTL); err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "store status failed")
	}
	return nil
}
