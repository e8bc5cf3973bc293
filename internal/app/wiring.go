package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	red "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"download-service/internal/audit"
	"download-service/internal/auth"
	"download-service/internal/config"
	"download-service/internal/delivery"
	"download-service/internal/http"
	"download-service/internal/http/handler"
	"download-service/internal/infra/cache"
	"download-service/internal/metrics"
	"download-service/internal/rbac"
	"download-service/internal/rbac/presets"
	"download-service/internal/repository/postgres"
	"download-service/internal/storage/s3"
)

const metricsNamespace = "download"

// InitializeService wires up all dependencies and returns a configured Service
func InitializeService(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Service, error) {
	svc := &Service{config: cfg, logger: log}

	db, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	svc.closers = append(svc.closers, func() error { db.Close(); return nil })
	log.Info("database connection established")

	s3Client, err := s3.NewClient(&cfg.AWS)
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	log.Info("s3 client initialized", zap.String("region", cfg.AWS.Region))

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
		"storage": func(ctx context.Context) error {
			return s3Client.Ping(ctx, delivery.BucketUploads)
		},
	}

	roleCache, redisClient, err := newRoleCache(ctx, cfg, log)
	if err != nil {
		svc.close()
		return nil, err
	}
	if redisClient != nil {
		svc.closers = append(svc.closers, redisClient.Close)
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deliveryMetrics, err := metrics.NewDeliveryMetrics(registry, metricsNamespace)
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("failed to register delivery metrics: %w", err)
	}
	httpMetrics, err := metrics.NewHTTPMetrics(metrics.HTTPMetricsOptions{Registerer: registry, Namespace: metricsNamespace})
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}

	checker := rbac.MustNew(presets.Community())
	dl := cfg.Download

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiryDuration)
	resolver := auth.NewResolver(jwtService, dl.CredentialTimeout)

	profiles := postgres.NewProfileRepository(db.Pool)
	posts := postgres.NewPostRepository(db.Pool)

	auditLogger := audit.NewLogger(db.Pool, log)
	svc.audit = auditLogger

	roleLookup := delivery.NewRoleLookup(profiles, roleCache, checker, dl.RoleLookupTimeout, log, deliveryMetrics).
		WithCacheTimeout(cfg.Redis.CacheTimeout)

	orchestrator := delivery.NewOrchestrator(delivery.Dependencies{
		Credentials: resolver,
		Roles:       roleLookup,
		Resources:   delivery.NewResourceLookup(posts, checker, dl.ResourceLookupTimeout, log, deliveryMetrics),
		Issuer: delivery.NewIssuer(s3Client, delivery.IssuerConfig{
			MaxAttempts:    dl.IssueMaxAttempts,
			BaseDelay:      dl.IssueBaseDelay,
			AttemptTimeout: dl.IssueAttemptTimeout,
		}, log, deliveryMetrics),
		Counter: delivery.NewCounter(posts, dl.CounterTimeout, log, deliveryMetrics),
		Audit:   auditLogger,
		Checker: checker,
		Logger:  log,
		Metrics: deliveryMetrics,
	}, dl.SignedURLExpiry)

	svc.server = http.NewServer(&http.ServerDependencies{
		Config:         cfg,
		Logger:         log,
		Downloads:      orchestrator,
		Profiles:       profiles,
		AuthMiddleware: auth.NewMiddleware(resolver),
		HealthChecks:   checks,
		HTTPMetrics:    httpMetrics,
		Gatherer:       registry,
	})

	return svc, nil
}

// newRoleCache picks Redis when an address is configured and an in-process
// cache otherwise. The returned client is nil for the in-process cache.
func newRoleCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.RoleCache, *red.Client, error) {
	if cfg.Redis.Addr == "" {
		memory := cache.NewMemoryRoleCache(cfg.Redis.RoleCacheTTL)
		memory.StartPruning(ctx, cfg.Redis.RoleCacheTTL)
		log.Info("role cache: in-memory", zap.Duration("ttl", cfg.Redis.RoleCacheTTL))
		return memory, nil, nil
	}

	client, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("role cache: redis", zap.String("addr", cfg.Redis.Addr))
	return cache.NewRedisRoleCache(client, "", cfg.Redis.RoleCacheTTL), client, nil
}
