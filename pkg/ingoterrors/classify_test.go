package ingoterrors

import (
	"context"
	"database/sql/driver"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsTransient_Timeouts(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(timeoutError{}))
	assert.True(t, IsTransient(errors.Wrap(context.DeadlineExceeded, "executing statement")))
}

func TestIsTransient_NetworkFaults(t *testing.T) {
	assert.True(t, IsTransient(&net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}))
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(io.ErrUnexpectedEOF))
	assert.True(t, IsTransient(driver.ErrBadConn))
}

func TestIsTransient_RetryablePostgresCodes(t *testing.T) {
	for _, code := range []string{
		pgerrcode.DeadlockDetected,
		pgerrcode.SerializationFailure,
		pgerrcode.AdminShutdown,
		pgerrcode.CannotConnectNow,
		pgerrcode.ConnectionFailure,
	} {
		assert.True(t, IsTransient(&pgconn.PgError{Code: code}), "code %s should be transient", code)
	}
}

func TestIsTransient_PermanentFailures(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("something broke")))
	assert.False(t, IsTransient(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, IsTransient(&pgconn.PgError{Code: pgerrcode.NotNullViolation}))
	assert.False(t, IsTransient(&pgconn.PgError{Code: pgerrcode.UndefinedTable}))
}

func TestIsTransient_CancellationIsNotTransient(t *testing.T) {
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.Wrap(context.Canceled, "dequeue")))
}

func TestIsRetryableSQLError_MessageFallback(t *testing.T) {
	assert.True(t, IsRetryableSQLError(errors.New("database is locked")))
	assert.True(t, IsRetryableSQLError(errors.New("Deadlock found when trying to get lock")))
	assert.False(t, IsRetryableSQLError(errors.New("syntax error")))
}

func TestBatchError(t *testing.T) {
	cause := errors.New("boom")
	err := &BatchError{BatchNumber: 7, RowsProcessed: 60, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "batch 7")
	assert.Contains(t, err.Error(), "60 rows")
}

func TestErrMaxRetriesExceeded(t *testing.T) {
	err := &ErrMaxRetriesExceeded{Attempts: 4, LastError: timeoutError{}}
	var target timeoutError
	assert.ErrorAs(t, err, &target)
	assert.Contains(t, err.Error(), "4 attempts")
}
