package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"download-service/internal/auth"
	"download-service/internal/config"
	"download-service/internal/delivery"
	"download-service/internal/domain/post"
	"download-service/internal/domain/profile"
	"download-service/internal/http/handler"
	"download-service/internal/metrics"
	"download-service/internal/rbac"
	"download-service/internal/rbac/presets"
	apperrors "download-service/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubDownloads struct {
	result *delivery.Result
	err    error
}

func (s *stubDownloads) Deliver(context.Context, delivery.Request) (*delivery.Result, error) {
	return s.result, s.err
}

type stubProfiles struct {
	created map[string]bool
}

func (s *stubProfiles) Ensure(_ context.Context, in profile.EnsureProfileInput) (bool, error) {
	if s.created[in.ID] {
		return false, nil
	}
	s.created[in.ID] = true
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second, ShutdownTimeout: time.Second},
		Download: config.DownloadConfig{
			RoleLookupTimeout:  time.Second,
			RateLimitPerSecond: 100,
			RateLimitBurst:     100,
		},
		App: config.AppConfig{Env: "test"},
	}
}

func newTestServer(t *testing.T, downloads handler.DownloadService) (*Server, *auth.JWTService, *prometheus.Registry) {
	t.Helper()

	jwtSvc := auth.NewJWTService(testSecret, "", time.Minute)
	reg := prometheus.NewRegistry()
	httpMetrics, err := metrics.NewHTTPMetrics(metrics.HTTPMetricsOptions{Registerer: reg})
	require.NoError(t, err)

	srv := NewServer(&ServerDependencies{
		Config:         testConfig(),
		Logger:         zap.NewNop(),
		Downloads:      downloads,
		Profiles:       &stubProfiles{created: map[string]bool{}},
		AuthMiddleware: auth.NewMiddleware(auth.NewResolver(jwtSvc, time.Second)),
		HealthChecks:   map[string]handler.HealthCheck{"database": func(context.Context) error { return nil }},
		HTTPMetrics:    httpMetrics,
		Gatherer:       reg,
	})
	return srv, jwtSvc, reg
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestServer_DownloadSuccess(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubDownloads{result: &delivery.Result{
		URL: delivery.SignedURL{URL: "https://storage.example/x", ExpiresInSeconds: 60},
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/downloads", strings.NewReader(`{"postId":"p1","filePath":"uploads/x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"url":"https://storage.example/x","expiresIn":60}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "no-store", rec.Header().Get(echo.HeaderCacheControl))
}

type fixedRoles struct{ role rbac.Role }

func (f fixedRoles) Lookup(context.Context, *auth.Identity) (rbac.Role, error) {
	return f.role, nil
}

type publicPosts struct{}

func (publicPosts) Lookup(_ context.Context, postID string) (*post.PermissionRecord, error) {
	return &post.PermissionRecord{PostID: postID, RequiredRole: presets.RoleGuest}, nil
}

type fixedIssuer struct{ url string }

func (f fixedIssuer) Issue(context.Context, string, string, time.Duration) (delivery.SignedURL, error) {
	return delivery.SignedURL{URL: f.url, ExpiresInSeconds: 60}, nil
}

type failingCounter struct{}

func (failingCounter) Increment(context.Context, string) (int64, error) {
	return 0, errors.New("counter unavailable")
}

func TestServer_DownloadSucceedsWhenCounterFails(t *testing.T) {
	orchestrator := delivery.NewOrchestrator(delivery.Dependencies{
		Credentials: auth.NewResolver(auth.NewJWTService(testSecret, "", time.Minute), time.Second),
		Roles:       fixedRoles{role: presets.RoleUser},
		Resources:   publicPosts{},
		Issuer:      fixedIssuer{url: "https://storage.example/uploads/x?sig=1"},
		Counter:     failingCounter{},
		Checker:     rbac.MustNew(presets.Community()),
	}, time.Minute)

	srv, jwtSvc, _ := newTestServer(t, orchestrator)
	token, err := jwtSvc.Generate(auth.Identity{ID: "u1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/downloads", strings.NewReader(`{"postId":"p1","filePath":"uploads/x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"url":"https://storage.example/uploads/x?sig=1","expiresIn":60}`, rec.Body.String())
}

func TestServer_DownloadErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{"missing parameter", apperrors.MissingParameter("postId"), http.StatusBadRequest, "missing required parameter: postId"},
		{"no credential", apperrors.NoCredential(), http.StatusUnauthorized, "authorization header must use the Bearer scheme"},
		{"invalid credential", apperrors.InvalidCredential(errors.New("expired")), http.StatusUnauthorized, "invalid or expired credential"},
		{"insufficient role", apperrors.InsufficientRole("admin"), http.StatusForbidden, "insufficient role: this file requires admin"},
		{"not found", apperrors.ResourceNotFound(), http.StatusNotFound, "post not found"},
		{"role lookup failed", apperrors.RoleLookupFailed(errors.New("timeout")), http.StatusInternalServerError, "could not resolve caller role"},
		{"issuance exhausted", apperrors.URLIssuanceExhausted(3, errors.New("s3")), http.StatusInternalServerError, "could not issue download url after 3 attempts"},
		{"dependency failure", apperrors.DependencyFailure("could not load post permissions", errors.New("pg")), http.StatusInternalServerError, "internal server error"},
		{"untyped error", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(t, &stubDownloads{err: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/api/downloads?postId=p1&filePath=uploads/x", nil)
			req.Header.Set(echo.HeaderXRequestID, "req-42")
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantMessage, body["error"])
			assert.Equal(t, "req-42", body["request_id"])
		})
	}
}

func TestServer_ProfileEnsure(t *testing.T) {
	srv, jwtSvc, _ := newTestServer(t, &stubDownloads{})

	token, err := jwtSvc.Generate(auth.Identity{ID: "u1", DisplayName: "Ada"})
	require.NoError(t, err)

	ensure := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/profiles/ensure", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	first := ensure("Bearer " + token)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"created":true}`, first.Body.String())

	second := ensure("Bearer " + token)
	assert.JSONEq(t, `{"created":false}`, second.Body.String())

	assert.Equal(t, http.StatusUnauthorized, ensure("").Code)
	assert.Equal(t, http.StatusUnauthorized, ensure("Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, ensure("Bearer not-a-jwt").Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubDownloads{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `download_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestServer_RateLimitsDownloads(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubDownloads{result: &delivery.Result{}})
	srv.deps.Config.Download.RateLimitPerSecond = 1
	srv.deps.Config.Download.RateLimitBurst = 1
	srv = NewServer(srv.deps)

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/downloads?postId=p1&filePath=uploads/x", nil)
		req.Header.Set(echo.HeaderXRealIP, "192.0.2.1")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestHTTPErrorHandler_LogsServerErrors(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewHTTPErrorHandler(zap.New(core))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/downloads", nil), rec)

	h(fmt.Errorf("wrapped: %w", apperrors.DependencyFailure("x", errors.New("pg down"))), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "unknown", entry.ContextMap()["request_id"])
}

func TestHTTPErrorHandler_EchoErrors(t *testing.T) {
	h := NewHTTPErrorHandler(nil)
	e := echo.New()

	rec := httptest.NewRecorder()
	h(echo.NewHTTPError(http.StatusUnsupportedMediaType, "Content-Type must be application/json"),
		e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "Content-Type must be application/json", decodeError(t, rec)["error"])

	rec = httptest.NewRecorder()
	h(context.Canceled, e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	assert.Equal(t, statusClientClosedRequest, rec.Code)
}

func TestServer_ProfilingRoutesOptIn(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubDownloads{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/heap", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	srv.deps.Config.App.EnableProfiling = true
	srv = NewServer(srv.deps)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/heap?debug=1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
