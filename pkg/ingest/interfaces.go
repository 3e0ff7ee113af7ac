package ingest

import (
	"context"

	"github.com/ingotproject/ingot/pkg/model"
)

// Source is a possibly-infinite, lazily-produced sequence of records. The
// pipeline's producer pulls from it one record at a time and never
// materializes the whole sequence.
type Source[T any] interface {
	// Next returns the next record. ok is false when the sequence is
	// exhausted; a non-nil error terminates the run.
	Next(ctx context.Context) (record T, ok bool, err error)
}

// RowMapper converts records to rows. Columns must return the same ordered
// column list for every record in one run; the order defines statement
// column order.
type RowMapper[T any] interface {
	Columns() []string
	Map(record T) model.Row
}

// ConnFactory hands out connections to the target. The pipeline acquires
// one connection per batch and never shares it across consumers.
type ConnFactory interface {
	Connect(ctx context.Context) (Conn, error)
}

// Conn is a single-consumer connection to the target database.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Begin(ctx context.Context) (Tx, error)
	Close(ctx context.Context) error
}

// Tx is a transaction scoped to one batch.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
