package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedBuildQuery           = func(name string, err error) error { return fmt.Errorf(errFailedBuildQueryFmt, name, err) }
	errFailedGetProfileRole       = func(err error) error { return fmt.Errorf(errFailedGetProfileRoleFmt, err) }
	errFailedEnsureProfile        = func(err error) error { return fmt.Errorf(errFailedEnsureProfileFmt, err) }
	errFailedGetPostPermission    = func(err error) error { return fmt.Errorf(errFailedGetPostPermissionFmt, err) }
	errFailedIncrementCounter     = func(err error) error { return fmt.Errorf(errFailedIncrementCounterFmt, err) }
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
