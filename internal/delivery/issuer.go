package delivery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"download-service/internal/logger"
	"download-service/internal/metrics"
	"download-service/pkg/deadline"
	apperrors "download-service/pkg/errors"
)

const defaultIssueAttempts = 3

// Signer presigns retrieval of one object. *s3.Client implements it.
type Signer interface {
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// SignedURL is a time-limited retrieval link.
type SignedURL struct {
	URL              string
	ExpiresInSeconds int
}

type IssuerConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

// Issuer obtains signed URLs, retrying failed attempts with linear backoff.
type Issuer struct {
	signer  Signer
	cfg     IssuerConfig
	logger  *zap.Logger
	metrics *metrics.DeliveryMetrics
	wait    func(ctx context.Context, d time.Duration) error
}

func NewIssuer(signer Signer, cfg IssuerConfig, lg *zap.Logger, m *metrics.DeliveryMetrics) *Issuer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultIssueAttempts
	}
	if cfg.BaseDelay < 0 {
		cfg.BaseDelay = 0
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Issuer{
		signer:  signer,
		cfg:     cfg,
		logger:  lg,
		metrics: m,
		wait:    sleepContext,
	}
}

// Issue makes up to MaxAttempts signing attempts with identical inputs.
// After failed attempt k it waits BaseDelay*k. When every attempt fails the
// error matches both ErrURLIssuanceExhausted and the last attempt's error.
func (i *Issuer) Issue(ctx context.Context, bucket, key string, ttl time.Duration) (SignedURL, error) {
	lg := logger.FromContext(ctx, i.logger)

	var lastErr error
	for attempt := 1; attempt <= i.cfg.MaxAttempts; attempt++ {
		url, err := deadline.Call(ctx, i.cfg.AttemptTimeout, func(ctx context.Context) (string, error) {
			return i.signer.PresignGetURL(ctx, bucket, key, ttl)
		})
		if err == nil {
			i.metrics.ObserveIssueAttempt(metrics.OutcomeSuccess)
			return SignedURL{URL: url, ExpiresInSeconds: int(ttl / time.Second)}, nil
		}

		i.metrics.ObserveIssueAttempt(metrics.OutcomeFailure)
		lastErr = err

		if ctx.Err() != nil {
			return SignedURL{}, ctx.Err()
		}

		if attempt == i.cfg.MaxAttempts {
			break
		}

		delay := i.cfg.BaseDelay * time.Duration(attempt)
		lg.Warn("signed url attempt failed",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)

		if err := i.wait(ctx, delay); err != nil {
			return SignedURL{}, err
		}
	}

	i.metrics.ObserveDependencyError(dependencySigner)
	return SignedURL{}, apperrors.URLIssuanceExhausted(i.cfg.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
