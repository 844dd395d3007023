package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	driverName = "postgres"

	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Options struct {
	DSN      string
	MaxConns int
	MaxIdle  int
}

func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	db, err := sql.Open(driverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxConns > 0 {
		db.SetMaxOpenConns(opts.MaxConns)
	}
	if opts.MaxIdle > 0 {
		db.SetMaxIdleConns(opts.MaxIdle)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// TxFunc runs inside a transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, tx *sql.Tx) error

// ExecuteTransaction commits when fn succeeds and rolls back otherwise.
func ExecuteTransaction(ctx context.Context, db *sql.DB, fn TxFunc) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}
