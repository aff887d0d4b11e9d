package pg

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/retailhub/foundation/core/pipeline"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrEmptyConnString          = errors.New("empty postgres connection string, use PG_CONN_URL env var")
	ErrHealthcheckFailed        = errors.New("postgres healthcheck failed")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound    = errors.New("migrations directory not found")
	ErrMigrationPathNotProvided = errors.New("migration path not provided")
)

// PostgreSQL SQLSTATE codes inspected by the helpers below.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeQueryCanceled        = "57014"
	codeAdminShutdown        = "57P01"
	codeCannotConnectNow     = "57P03"
	classConnectionException = "08"
)

// IsNotFoundError reports whether err is pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// IsForeignKeyViolationError reports a referential integrity violation.
func IsForeignKeyViolationError(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// IsTxClosedError reports use of a committed or rolled back transaction.
func IsTxClosedError(err error) bool {
	return errors.Is(err, pgx.ErrTxClosed)
}

// ClassifyError tags PostgreSQL failures with a pipeline failure kind so the
// Retry behavior can tell transient conflicts from permanent ones.
// Serialization failures, deadlocks and connection errors become transient,
// a canceled statement becomes a timeout. Other errors are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	code := sqlState(err)
	switch {
	case code == codeSerializationFailure, code == codeDeadlockDetected,
		code == codeAdminShutdown, code == codeCannotConnectNow,
		strings.HasPrefix(code, classConnectionException):
		return pipeline.Transient(err)
	case code == codeQueryCanceled:
		return pipeline.Timeout(err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return pipeline.Transient(err)
	}
	return err
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
