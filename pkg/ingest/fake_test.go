package ingest

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ingotproject/ingot/pkg/model"
	"github.com/ingotproject/ingot/pkg/retry"
)

// intMapper maps plain ints to single-column rows.
type intMapper struct{}

func (intMapper) Columns() []string        { return []string{"n"} }
func (intMapper) Map(record int) model.Row { return model.Row{"n": record} }

// pairMapper maps ints to two-column rows, used to exercise statement
// splitting against narrow parameter ceilings.
type pairMapper struct{}

func (pairMapper) Columns() []string        { return []string{"a", "b"} }
func (pairMapper) Map(record int) model.Row { return model.Row{"a": record, "b": record * 2} }

// emptyMapper returns no columns.
type emptyMapper struct{}

func (emptyMapper) Columns() []string        { return nil }
func (emptyMapper) Map(record int) model.Row { return nil }

type execCall struct {
	sql  string
	args []any
}

// fakeTarget is an in-memory stand-in for a database. It implements
// ConnFactory and records every connection, statement and transaction
// boundary it sees. execErr, keyed by the 1-based global exec call number,
// injects failures; gate, when non-nil, blocks every exec until closed.
type fakeTarget struct {
	mu         sync.Mutex
	connects   int
	closes     int
	begins     int
	commits    int
	rollbacks  int
	calls      []execCall
	connectErr error
	execErr    func(ctx context.Context, call int, args []any) error
	gate       chan struct{}
}

func (f *fakeTarget) Connect(ctx context.Context) (Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.connects++
	return &fakeConn{target: f}, nil
}

func (f *fakeTarget) exec(ctx context.Context, sql string, args []any) error {
	if f.gate != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.gate:
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	call := len(f.calls)
	hook := f.execErr
	f.mu.Unlock()
	if hook != nil {
		return hook(ctx, call, args)
	}
	return nil
}

func (f *fakeTarget) execCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTarget) counts() (connects, closes, begins, commits, rollbacks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects, f.closes, f.begins, f.commits, f.rollbacks
}

type fakeConn struct {
	target *fakeTarget
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) error {
	return c.target.exec(ctx, sql, args)
}

func (c *fakeConn) Begin(ctx context.Context) (Tx, error) {
	c.target.mu.Lock()
	c.target.begins++
	c.target.mu.Unlock()
	return &fakeTx{target: c.target}, nil
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.target.mu.Lock()
	c.target.closes++
	c.target.mu.Unlock()
	return nil
}

type fakeTx struct {
	target *fakeTarget
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) error {
	return t.target.exec(ctx, sql, args)
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.target.mu.Lock()
	t.target.commits++
	t.target.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.target.mu.Lock()
	t.target.rollbacks++
	t.target.mu.Unlock()
	return nil
}

// narrowDialect has an artificially small parameter ceiling.
type narrowDialect struct {
	maxParams int
}

func (d narrowDialect) Name() string { return "narrow" }

func (d narrowDialect) QuoteIdentifier(identifier string) string { return `"` + identifier + `"` }

func (d narrowDialect) Placeholder(index int) string { return "$" + strconv.Itoa(index+1) }

func (d narrowDialect) MaxParameters() int { return d.maxParams }

// timeoutErr satisfies net.Error and is therefore classified as transient.
type timeoutErr struct {
	msg string
}

func (e timeoutErr) Error() string   { return e.msg }
func (e timeoutErr) Timeout() bool   { return true }
func (e timeoutErr) Temporary() bool { return true }

func fastRetry(maxRetries int) *retry.Policy {
	return &retry.Policy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Backoff:      retry.BackoffExponential,
	}
}

// testConfig is a minimal valid configuration: no retry, no sampling, no
// time-based flushing.
func testConfig(batchSize, parallelism int) Config {
	return Config{
		BatchSize:   batchSize,
		Parallelism: parallelism,
		QueueDepth:  2,
	}
}
