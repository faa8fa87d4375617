// Package database owns the PostgreSQL connection pool shared by every bounded context.
//
// The pool is a pgxpool.Pool exposed through database/sql (pgx stdlib) because the
// repositories, the Watermill SQL transport and goose all speak *sql.DB / *sql.Tx.
// Running the outbox publisher and the business writes on the same *sql.Tx is what
// makes "mutate + emit" atomic.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/omnik-labs/marketplace/pkg/logger"
)

// Transactor runs fn as one unit of work. Repositories called with the ctx passed
// to fn take part in the same transaction; a nested WithinTx joins the outer one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// TxFromCtx returns the transaction opened by WithinTx, if any.
func TxFromCtx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// DBTX is satisfied by both *sql.DB and *sql.Tx so query code can run inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Database wraps the pgx pool and its database/sql facade.
type Database struct {
	pool *pgxpool.Pool
	db   *sql.DB
	log  logger.Logger
}

// Options tunes the pool. Zero values fall back to pgxpool defaults.
type Options struct {
	MaxConns int
	MinConns int
}

// NewPool parses url, opens a pgx pool and verifies connectivity.
func NewPool(ctx context.Context, url string, log logger.Logger, opts ...Options) (*Database, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if len(opts) > 0 {
		if opts[0].MaxConns > 0 {
			poolCfg.MaxConns = int32(opts[0].MaxConns)
		}
		if opts[0].MinConns > 0 {
			poolCfg.MinConns = int32(opts[0].MinConns)
		}
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Database{
		pool: pool,
		db:   stdlib.OpenDBFromPool(pool),
		log:  log,
	}, nil
}

// DB returns the database/sql handle backed by the pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

// WithTx runs fn inside a transaction. The transaction commits when fn returns nil
// and rolls back otherwise; a panic in fn rolls back and re-panics.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			d.log.ErrorContext(ctx, "rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// WithinTx implements Transactor. The transaction travels in the ctx handed to fn;
// fetch it with Conn or TxFromCtx.
func (d *Database) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromCtx(ctx); ok {
		return fn(ctx)
	}
	return d.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction carried by ctx, or the pool when there is none.
func (d *Database) Conn(ctx context.Context) DBTX {
	if tx, ok := TxFromCtx(ctx); ok {
		return tx
	}
	return d.db
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// Close closes the database/sql facade and the pool.
func (d *Database) Close() {
	_ = d.db.Close()
	d.pool.Close()
}
