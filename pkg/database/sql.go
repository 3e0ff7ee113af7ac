package database

import (
	"context"
	"database/sql"

	"github.com/ingotproject/ingot/pkg/ingest"
)

// SQLFactory hands out connections from a database/sql handle, making the
// MySQL, SQL Server and SQLite dialects usable through any stdlib driver.
type SQLFactory struct {
	db *sql.DB
}

func NewSQLFactory(db *sql.DB) *SQLFactory {
	return &SQLFactory{db: db}
}

func (f *SQLFactory) Connect(ctx context.Context) (ingest.Conn, error) {
	conn, err := f.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlConn{conn: conn}, nil
}

type sqlConn struct {
	conn *sql.Conn
}

func (c *sqlConn) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.conn.ExecContext(ctx, query, args...)
	return err
}

func (c *sqlConn) Begin(ctx context.Context) (ingest.Tx, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx: tx}, nil
}

func (c *sqlConn) Close(context.Context) error {
	return c.conn.Close()
}

type sqlTx struct {
	tx *sql.Tx
}

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t sqlTx) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t sqlTx) Rollback(context.Context) error {
	return t.tx.Rollback()
}
