// Package database adapts real database handles to the connection
// interfaces consumed by the ingestion pipeline.
package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ingotproject/ingot/pkg/ingest"
)

// CreateConnectionString renders a key/value map as a libpq connection
// string.
func CreateConnectionString(values map[string]string) string {
	// https://www.postgresql.org/docs/current/libpq-connect.html
	result := ""
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	for k, v := range values {
		result += k + "='" + replacer.Replace(v) + "' "
	}
	return strings.TrimSpace(result)
}

// OpenPgxPool opens and pings a pgx connection pool.
func OpenPgxPool(ctx context.Context, connection map[string]string) (*pgxpool.Pool, error) {
	db, err := pgxpool.Connect(ctx, CreateConnectionString(connection))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// PgxFactory hands out connections from a pgx pool. Each batch acquires its
// own connection and releases it on close.
type PgxFactory struct {
	pool *pgxpool.Pool
}

func NewPgxFactory(pool *pgxpool.Pool) *PgxFactory {
	return &PgxFactory{pool: pool}
}

func (f *PgxFactory) Connect(ctx context.Context) (ingest.Conn, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxConn{conn: conn}, nil
}

type pgxConn struct {
	conn *pgxpool.Conn
}

func (c *pgxConn) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := c.conn.Exec(ctx, sql, args...)
	return err
}

func (c *pgxConn) Begin(ctx context.Context) (ingest.Tx, error) {
	tx, err := c.conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return nil, err
	}
	return pgxTx{tx: tx}, nil
}

func (c *pgxConn) Close(context.Context) error {
	c.conn.Release()
	return nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t pgxTx) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := t.tx.Exec(ctx, sql, args...)
	return err
}

func (t pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
