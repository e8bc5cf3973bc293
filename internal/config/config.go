package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envS3Endpoint            = "S3_ENDPOINT"
	envS3ForcePathStyle      = "S3_FORCE_PATH_STYLE"
	envS3BucketPrefix        = "S3_BUCKET_PREFIX"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY_MINUTES"
	envJWTIssuer             = "JWT_ISSUER"
	envRedisAddr             = "REDIS_ADDR"
	envRedisPassword         = "REDIS_PASSWORD"
	envRedisDB               = "REDIS_DB"
	envRoleCacheTTL          = "ROLE_CACHE_TTL"
	envRoleCacheTimeout      = "ROLE_CACHE_TIMEOUT"
	envDownloadURLTimeLimit  = "DOWNLOAD_URL_TIME_LIMIT"
	envCredentialTimeout     = "CREDENTIAL_TIMEOUT"
	envRoleLookupTimeout     = "ROLE_LOOKUP_TIMEOUT"
	envResourceLookupTimeout = "RESOURCE_LOOKUP_TIMEOUT"
	envIssueAttemptTimeout   = "ISSUE_ATTEMPT_TIMEOUT"
	envIssueMaxAttempts      = "ISSUE_MAX_ATTEMPTS"
	envIssueBaseDelay        = "ISSUE_BASE_DELAY"
	envCounterTimeout        = "COUNTER_TIMEOUT"
	envRedirectDefault       = "DOWNLOAD_REDIRECT_DEFAULT"
	envRateLimitPerSecond    = "RATE_LIMIT_PER_SECOND"
	envRateLimitBurst        = "RATE_LIMIT_BURST"
	envAppEnv                = "APP_ENV"
	envEnableProfiling       = "ENABLE_PROFILING"
)

const (
	defaultServerPort            = "8080"
	defaultServerReadTimeout     = 10 * time.Second
	defaultServerWriteTimeout    = 30 * time.Second
	defaultServerShutdown        = 10 * time.Second
	defaultDBHost                = "localhost"
	defaultDBPort                = 5432
	defaultDBName                = "community"
	defaultDBUser                = "download_app"
	defaultDBSSLMode             = "disable"
	defaultDBMaxConns            = 25
	defaultDBMinConns            = 5
	defaultJWTExpiry             = 60 * time.Minute
	defaultRedisDB               = 0
	defaultRoleCacheTTL          = 30 * time.Second
	defaultRoleCacheTimeout      = 250 * time.Millisecond
	defaultSignedURLExpiry       = 60 * time.Second
	defaultDependencyTimeout     = 5 * time.Second
	defaultIssueMaxAttempts      = 3
	defaultIssueBaseDelay        = time.Second
	defaultRateLimitPerSecond    = 20
	defaultRateLimitBurst        = 40
	defaultAppEnv                = "development"
	minJWTSecretLength           = 32
	maxIssueAttempts             = 10
	errPortRequiredFmt           = "PORT must be set"
	errDBPasswordRequiredFmt     = "DB_PASSWORD must be set"
	errRegionRequiredFmt         = "REGION must be set"
	errAWSAccessKeyRequiredFmt   = "AWS_ACCESS_KEY_ID must be set"
	errAWSSecretKeyRequiredFmt   = "AWS_SECRET_ACCESS_KEY must be set"
	errJWTSecretRequiredFmt      = "JWT_SECRET must be set"
	errJWTSecretMinLengthFmt     = "JWT_SECRET must be at least %d characters"
	errURLExpiryPositiveFmt      = "DOWNLOAD_URL_TIME_LIMIT must be positive"
	errIssueAttemptsRangeFmt     = "ISSUE_MAX_ATTEMPTS must be between 1 and %d"
	errIssueBaseDelayNegativeFmt = "ISSUE_BASE_DELAY must not be negative"
	errTimeoutPositiveFmt        = "%s must be positive"
	errInvalidConfigurationFmt   = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AWS      AWSConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Download DownloadConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	ForcePathStyle  bool
	BucketPrefix    string
}

type JWTConfig struct {
	Secret         string
	Issuer         string
	ExpiryDuration time.Duration
}

// RedisConfig is optional; an empty Addr keeps the role cache in memory.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	RoleCacheTTL time.Duration
	// CacheTimeout bounds each cache read or write; a timeout is a miss.
	CacheTimeout time.Duration
}

type DownloadConfig struct {
	SignedURLExpiry       time.Duration
	CredentialTimeout     time.Duration
	RoleLookupTimeout     time.Duration
	ResourceLookupTimeout time.Duration
	IssueAttemptTimeout   time.Duration
	IssueMaxAttempts      int
	IssueBaseDelay        time.Duration
	CounterTimeout        time.Duration
	RedirectByDefault     bool
	RateLimitPerSecond    int
	RateLimitBurst        int
}

type AppConfig struct {
	Env string
	// EnableProfiling exposes /debug/pprof. Keep it off in production.
	EnableProfiling bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getSecondsEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getSecondsEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getSecondsEnv(envServerShutdownTimeout, defaultServerShutdown),
		},
		Database: loadDatabaseConfig(),
		AWS: AWSConfig{
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
			Endpoint:        os.Getenv(envS3Endpoint),
			ForcePathStyle:  getBoolEnv(envS3ForcePathStyle, false),
			BucketPrefix:    os.Getenv(envS3BucketPrefix),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv(envJWTSecret),
			Issuer:         os.Getenv(envJWTIssuer),
			ExpiryDuration: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
		},
		Redis: RedisConfig{
			Addr:         os.Getenv(envRedisAddr),
			Password:     os.Getenv(envRedisPassword),
			DB:           getIntEnv(envRedisDB, defaultRedisDB),
			RoleCacheTTL: getSecondsEnv(envRoleCacheTTL, defaultRoleCacheTTL),
			CacheTimeout: getSecondsEnv(envRoleCacheTimeout, defaultRoleCacheTimeout),
		},
		Download: DownloadConfig{
			SignedURLExpiry:       getSecondsEnv(envDownloadURLTimeLimit, defaultSignedURLExpiry),
			CredentialTimeout:     getSecondsEnv(envCredentialTimeout, defaultDependencyTimeout),
			RoleLookupTimeout:     getSecondsEnv(envRoleLookupTimeout, defaultDependencyTimeout),
			ResourceLookupTimeout: getSecondsEnv(envResourceLookupTimeout, defaultDependencyTimeout),
			IssueAttemptTimeout:   getSecondsEnv(envIssueAttemptTimeout, defaultDependencyTimeout),
			IssueMaxAttempts:      getIntEnv(envIssueMaxAttempts, defaultIssueMaxAttempts),
			IssueBaseDelay:        getSecondsEnv(envIssueBaseDelay, defaultIssueBaseDelay),
			CounterTimeout:        getSecondsEnv(envCounterTimeout, defaultDependencyTimeout),
			RedirectByDefault:     getBoolEnv(envRedirectDefault, false),
			RateLimitPerSecond:    getIntEnv(envRateLimitPerSecond, defaultRateLimitPerSecond),
			RateLimitBurst:        getIntEnv(envRateLimitBurst, defaultRateLimitBurst),
		},
		App: AppConfig{
			Env:             getEnv(envAppEnv, defaultAppEnv),
			EnableProfiling: getBoolEnv(envEnableProfiling, false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings, for tooling that does not
// need the rest of the service configuration.
func LoadDatabase() (*DatabaseConfig, error) {
	cfg := loadDatabaseConfig()
	if cfg.Password == "" {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, fmt.Errorf(errDBPasswordRequiredFmt))
	}
	return &cfg, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv(envDBHost, defaultDBHost),
		Port:     getIntEnv(envDBPort, defaultDBPort),
		Database: getEnv(envDBName, defaultDBName),
		User:     getEnv(envDBUser, defaultDBUser),
		Password: os.Getenv(envDBPassword),
		SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
		MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
		MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Database.Password == "" {
		return fmt.Errorf(errDBPasswordRequiredFmt)
	}

	if c.AWS.Region == "" {
		return fmt.Errorf(errRegionRequiredFmt)
	}

	if c.AWS.AccessKeyID == "" {
		return fmt.Errorf(errAWSAccessKeyRequiredFmt)
	}

	if c.AWS.SecretAccessKey == "" {
		return fmt.Errorf(errAWSSecretKeyRequiredFmt)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	return c.Download.Validate()
}

func (d *DownloadConfig) Validate() error {
	if d.SignedURLExpiry <= 0 {
		return fmt.Errorf(errURLExpiryPositiveFmt)
	}

	if d.IssueMaxAttempts < 1 || d.IssueMaxAttempts > maxIssueAttempts {
		return fmt.Errorf(errIssueAttemptsRangeFmt, maxIssueAttempts)
	}

	if d.IssueBaseDelay < 0 {
		return fmt.Errorf(errIssueBaseDelayNegativeFmt)
	}

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{envCredentialTimeout, d.CredentialTimeout},
		{envRoleLookupTimeout, d.RoleLookupTimeout},
		{envResourceLookupTimeout, d.ResourceLookupTimeout},
		{envIssueAttemptTimeout, d.IssueAttemptTimeout},
		{envCounterTimeout, d.CounterTimeout},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf(errTimeoutPositiveFmt, t.name)
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// PhysicalBucket maps a logical bucket name to the configured S3 bucket
func (c *AWSConfig) PhysicalBucket(logical string) string {
	return c.BucketPrefix + logical
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		fmt.Fprintln(os.Stderr, messages.invalidEnvValue(key, value))
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
		fmt.Fprintln(os.Stderr, messages.invalidEnvValue(key, value))
	}
	return defaultValue
}

// getDurationEnv reads plain integers as minutes. Only JWT_EXPIRY_MINUTES
// uses it.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
		fmt.Fprintln(os.Stderr, messages.invalidEnvValue(key, value))
	}
	return defaultValue
}

// getSecondsEnv reads plain integers as seconds and anything else as a Go
// duration string ("250ms", "2s").
func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		fmt.Fprintln(os.Stderr, messages.invalidEnvValue(key, value))
	}
	return defaultValue
}
