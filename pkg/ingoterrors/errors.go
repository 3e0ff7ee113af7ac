// Package ingoterrors contains the error types surfaced by the ingestion
// pipeline, together with the transient/permanent classification used to
// decide whether a failed database operation should be retried.
package ingoterrors

import (
	"fmt"
)

// ErrInvalidConfig indicates that a configuration value failed eager
// validation. No I/O is performed before configuration has been validated,
// so this error is always raised before any work starts.
type ErrInvalidConfig struct {
	Name    string      // Name of the offending field, e.g. "BatchSize"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message explaining why the value is invalid
}

func (err *ErrInvalidConfig) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("invalid configuration: %s has invalid value %v: %s", err.Name, err.Value, err.Message)
	}
	return fmt.Sprintf("invalid configuration: %s has invalid value %v", err.Name, err.Value)
}

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the argument referred to, e.g. "columns"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message to include with the error message
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("value %v of %s is invalid: %s", err.Value, err.Name, err.Message)
	}
	return fmt.Sprintf("value %v of %s is invalid", err.Value, err.Name)
}

// ErrMaxRetriesExceeded indicates that an operation kept failing with a
// transient error until the retry budget was exhausted.
type ErrMaxRetriesExceeded struct {
	Attempts  int
	LastError error
}

func (err *ErrMaxRetriesExceeded) Error() string {
	return fmt.Sprintf("gave up after %d attempts, last error: %v", err.Attempts, err.LastError)
}

func (err *ErrMaxRetriesExceeded) Unwrap() error {
	return err.LastError
}

// BatchError is the terminal failure of a single batch. It carries the
// 1-based number of the batch that failed and the number of rows durably
// written before it, so callers can account for partial progress.
type BatchError struct {
	BatchNumber   int64
	RowsProcessed uint64
	Err           error
}

func (err *BatchError) Error() string {
	return fmt.Sprintf("batch %d failed after %d rows were processed: %v", err.BatchNumber, err.RowsProcessed, err.Err)
}

func (err *BatchError) Unwrap() error {
	return err.Err
}
