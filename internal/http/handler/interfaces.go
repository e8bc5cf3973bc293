package handler

import (
	"context"

	"download-service/internal/delivery"
	"download-service/internal/domain/profile"
)

// Consumer-side interfaces defined by handlers

type DownloadService interface {
	Deliver(ctx context.Context, req delivery.Request) (*delivery.Result, error)
}

type ProfileEnsurer interface {
	Ensure(ctx context.Context, input profile.EnsureProfileInput) (bool, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error
