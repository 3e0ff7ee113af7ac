package ingoterrors

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

// IsTransient reports whether an error is expected to succeed on retry:
// timeouts, connectivity faults and deadlock indicators. Everything else,
// e.g. constraint violations, is permanent and must not be retried.
// Context cancellation is neither: it is checked separately by the caller.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return IsTimeout(err) || IsNetworkError(err) || IsRetryableSQLError(err)
}

// IsTimeout reports whether an error indicates that an operation ran out of
// time, including a per-command deadline being exceeded.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNetworkError reports whether an error indicates a connectivity fault
// between us and the database.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsRetryableSQLError reports whether a database error is worth retrying.
// For postgres we rely on the SQLSTATE carried by pgconn; for other engines
// we fall back to inspecting the message for the well-known deadlock and
// lock-contention phrases.
func IsRetryableSQLError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.DeadlockDetected,
			pgerrcode.SerializationFailure,
			pgerrcode.AdminShutdown,
			pgerrcode.CrashShutdown,
			pgerrcode.CannotConnectNow,
			pgerrcode.TooManyConnections:
			return true
		}
		return pgerrcode.IsConnectionException(pgErr.Code)
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") || strings.Contains(msg, "database is locked")
}
