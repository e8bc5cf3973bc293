package delivery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"download-service/internal/logger"
	"download-service/internal/metrics"
	"download-service/internal/repository"
	"download-service/pkg/deadline"
	apperrors "download-service/pkg/errors"
)

// Counter increments a post's download count. Failures are logged and
// reported to the caller, who must not let them change the response.
type Counter struct {
	posts   repository.PostRepository
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.DeliveryMetrics
}

func NewCounter(posts repository.PostRepository, timeout time.Duration, lg *zap.Logger, m *metrics.DeliveryMetrics) *Counter {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Counter{posts: posts, timeout: timeout, logger: lg, metrics: m}
}

// Increment returns the new count. Errors wrap ErrCounterUpdateFailed.
func (c *Counter) Increment(ctx context.Context, postID string) (int64, error) {
	count, err := deadline.Call(ctx, c.timeout, func(ctx context.Context) (int64, error) {
		return c.posts.IncrementDownloadCount(ctx, postID)
	})
	if err != nil {
		c.metrics.ObserveCounterFailure()
		logger.FromContext(ctx, c.logger).Warn("download counter update failed",
			zap.String("post_id", postID),
			zap.Error(err),
		)
		return 0, fmt.Errorf("%w: %w", apperrors.ErrCounterUpdateFailed, err)
	}

	return count, nil
}
