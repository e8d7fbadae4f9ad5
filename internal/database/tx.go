package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Executor is the subset of *sql.DB / *sql.Tx used by repositories.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Transactor runs a function inside a single database transaction. The function's
// error (or a panic) rolls everything back; a nil error commits.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec Executor) error) error
}

type sqlTransactor struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewTransactor uses READ COMMITTED; row locks taken inside fn provide the serialisation.
func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db, opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted}}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(exec Executor) error) (err error) {
	tx, err := t.db.BeginTx(ctx, t.opts)
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			log.Error().Interface("panic", p).Msg("Transaction panic, rolling back")
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Warn().Err(rbErr).Msg("Transaction rollback failed")
			}
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("failed to commit transaction: %w", err)
		}
	}()

	err = fn(tx)
	return err
}
