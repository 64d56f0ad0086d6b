// Package store provides the pooled-Postgres plumbing shared by the
// coordinator's and share node's local stores, grounded on the teacher's
// storage/postgres.go SQLDB wrapper (pgxpool.Pool, pool.BeginTx).
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Pool wraps a pgx connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and returns a ready Pool.
func Open(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse dsn: %w", err)
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return &Pool{pool: pool}, nil
}

func (p *Pool) Close() { p.pool.Close() }

// Exec runs sql outside of any caller-managed transaction.
func (p *Pool) Exec(ctx context.Context, sql string, args ...interface{}) error {
	_, err := p.pool.Exec(ctx, sql, args...)
	return err
}

// QueryRow runs sql and returns the single resulting row.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// Query runs sql and returns the resulting row set.
func (p *Pool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

// WithTx runs fn inside a serializable transaction, committing on success
// and rolling back if fn returns an error or panics.
func (p *Pool) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
