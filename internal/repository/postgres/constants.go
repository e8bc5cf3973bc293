package postgres

import (
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	tableProfiles = "profiles"
	tablePosts    = "posts"

	errProfileNotFound = "profile not found"
	errPostNotFound    = "post not found"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedBuildQueryFmt = "failed to build %s query: %w"

	errFailedGetProfileRoleFmt = "failed to get profile role: %w"
	errFailedEnsureProfileFmt  = "failed to ensure profile: %w"

	errFailedGetPostPermissionFmt = "failed to get post permission: %w"
	errFailedIncrementCounterFmt  = "failed to increment download count: %w"
)
