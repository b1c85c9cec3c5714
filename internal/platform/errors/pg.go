package errors

// Postgres helpers: SQLSTATE mapping, retry and reachability predicates

import (
	"context"
	stderrs "errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes we branch on
const (
	pgErrUniqueViolation           = "23505"
	pgErrForeignKeyViolation       = "23503"
	pgErrNotNullViolation          = "23502"
	pgErrCheckViolation            = "23514"
	pgErrStringDataRightTruncation = "22001"
	pgErrInvalidTextRepresentation = "22P02"

	pgErrSerializationFailure   = "40001"
	pgErrDeadlockDetected       = "40P01"
	pgErrLockNotAvailable       = "55P03"
	pgErrReadOnlySQLTransaction = "25006"
	pgErrAdminShutdown          = "57P01"
	pgErrCannotConnectNow       = "57P03"
	pgErrTooManyConnections     = "53300"
)

// ExtractPgError returns the root *pgconn.PgError, if any
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a Postgres error with the given SQLSTATE
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// IsConnectionUnavailable reports a server that refuses work right now
// (starting up, shutting down, out of connection slots)
func IsConnectionUnavailable(err error) bool {
	return IsSQLState(err, pgErrCannotConnectNow) ||
		IsSQLState(err, pgErrAdminShutdown) ||
		IsSQLState(err, pgErrTooManyConnections)
}

// IsUnreachable reports failures that mean the database could not be talked to
// at all: dial errors, network errors, deadlines, and refusal SQLSTATEs
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.DeadlineExceeded) || IsConnectionUnavailable(err) {
		return true
	}
	var ce *pgconn.ConnectError
	if stderrs.As(err, &ce) {
		return true
	}
	var ne net.Error
	if stderrs.As(err, &ne) {
		return true
	}
	return strings.Contains(strings.ToLower(Root(err).Error()), "closed pool")
}

// DBErrorCode maps a Postgres error to an ErrorCode; !ok when err is not a PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case pgErrUniqueViolation:
		return ErrorCodeConflict, true
	case pgErrForeignKeyViolation, pgErrStringDataRightTruncation, pgErrInvalidTextRepresentation:
		return ErrorCodeInvalidArgument, true
	case pgErrNotNullViolation, pgErrCheckViolation:
		return ErrorCodeValidation, true
	case pgErrReadOnlySQLTransaction, pgErrCannotConnectNow, pgErrAdminShutdown, pgErrTooManyConnections:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a pg error with its mapped code; nil stays nil.
// Unreachable databases map to Unavailable
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	if IsUnreachable(err) {
		return Wrap(err, ErrorCodeUnavailable, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// IsRetryable reports transient server-side contention. Local cancellations
// and deadlines are never retryable here
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := ExtractPgError(err); ok {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable:
			return true
		}
		return false
	}
	s := strings.ToLower(Root(err).Error())
	for _, frag := range []string{
		"commit unexpectedly resulted in rollback",
		"deadlock detected",
		"could not serialize access",
		"canceling statement due to lock timeout",
	} {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
