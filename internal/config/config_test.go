package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(envDBPassword, "db-password")
	t.Setenv(envAWSRegion, "eu-west-1")
	t.Setenv(envAWSAccessKeyID, "AKIAEXAMPLE")
	t.Setenv(envAWSSecretAccessKey, "secret")
	t.Setenv(envJWTSecret, "a-very-long-jwt-secret-with-enough-characters")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultServerPort, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Download.SignedURLExpiry)
	assert.Equal(t, 5*time.Second, cfg.Download.CredentialTimeout)
	assert.Equal(t, 5*time.Second, cfg.Download.RoleLookupTimeout)
	assert.Equal(t, 5*time.Second, cfg.Download.ResourceLookupTimeout)
	assert.Equal(t, 3, cfg.Download.IssueMaxAttempts)
	assert.Equal(t, time.Second, cfg.Download.IssueBaseDelay)
	assert.False(t, cfg.Download.RedirectByDefault)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(envDownloadURLTimeLimit, "300")
	t.Setenv(envIssueMaxAttempts, "5")
	t.Setenv(envIssueBaseDelay, "250ms")
	t.Setenv(envRedirectDefault, "true")
	t.Setenv(envS3BucketPrefix, "audio-")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 300*time.Second, cfg.Download.SignedURLExpiry)
	assert.Equal(t, 5, cfg.Download.IssueMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Download.IssueBaseDelay)
	assert.True(t, cfg.Download.RedirectByDefault)
	assert.Equal(t, "audio-uploads", cfg.AWS.PhysicalBucket("uploads"))
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(envJWTSecret, "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET must be set")
}

func TestLoad_ShortSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(envJWTSecret, "short")

	_, err := Load()
	assert.ErrorContains(t, err, "at least")
}

func TestDownloadConfig_Validate(t *testing.T) {
	valid := DownloadConfig{
		SignedURLExpiry:       time.Minute,
		CredentialTimeout:     time.Second,
		RoleLookupTimeout:     time.Second,
		ResourceLookupTimeout: time.Second,
		IssueAttemptTimeout:   time.Second,
		IssueMaxAttempts:      3,
		IssueBaseDelay:        time.Second,
		CounterTimeout:        time.Second,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*DownloadConfig)
	}{
		{"zero expiry", func(d *DownloadConfig) { d.SignedURLExpiry = 0 }},
		{"zero attempts", func(d *DownloadConfig) { d.IssueMaxAttempts = 0 }},
		{"too many attempts", func(d *DownloadConfig) { d.IssueMaxAttempts = maxIssueAttempts + 1 }},
		{"negative delay", func(d *DownloadConfig) { d.IssueBaseDelay = -time.Second }},
		{"zero credential timeout", func(d *DownloadConfig) { d.CredentialTimeout = 0 }},
		{"zero counter timeout", func(d *DownloadConfig) { d.CounterTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestGetDurationEnv_MinutesFallback(t *testing.T) {
	t.Setenv("TEST_DURATION", "2")
	assert.Equal(t, 2*time.Minute, getDurationEnv("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "garbage")
	assert.Equal(t, time.Second, getDurationEnv("TEST_DURATION", time.Second))
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv(envDBPassword, "")
	_, err := LoadDatabase()
	assert.ErrorContains(t, err, "DB_PASSWORD must be set")

	t.Setenv(envDBPassword, "pw")
	t.Setenv(envDBPort, "6543")
	cfg, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, defaultDBName, cfg.Database)
}

func TestLoad_BareIntegerTimeoutsAreSeconds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(envRoleLookupTimeout, "5")
	t.Setenv(envCredentialTimeout, "2")
	t.Setenv(envServerShutdownTimeout, "15")
	t.Setenv(envRoleCacheTimeout, "100ms")
	t.Setenv(envJWTExpiry, "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Download.RoleLookupTimeout)
	assert.Equal(t, 2*time.Second, cfg.Download.CredentialTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Redis.CacheTimeout)
	assert.Equal(t, 30*time.Minute, cfg.JWT.ExpiryDuration)
}
