package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Querier is the ambient handle repository calls run on: either the root
// connection pool or an open transaction.
type Querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// Tx is an open transaction plus the side effects to run once it commits.
// Broadcast and notification work registers here so a failed commit drops it
// and a committed write can never be rolled back by a side-effect failure.
type Tx struct {
	Q     Querier
	hooks []func()
}

// AfterCommit schedules fn to run after a successful commit. Hooks must be
// fault-isolated internally; they cannot return errors.
func (t *Tx) AfterCommit(fn func()) {
	t.hooks = append(t.hooks, fn)
}

// Hooks exposes the registered post-commit hooks for Store implementations.
func (t *Tx) Hooks() []func() { return t.hooks }

// Store brackets multi-step writes in a transaction and exposes the plain
// pool for single reads.
type Store interface {
	Reader() Querier
	WithinTx(ctx context.Context, fn func(tx *Tx) error) error
}

// SQLStore is the sqlx-backed Store.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Reader() Querier { return s.db }

// WithinTx runs fn inside a transaction and executes registered post-commit
// hooks only after Commit succeeds.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	tx := &Tx{Q: sqlTx}
	if err := fn(tx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	for _, hook := range tx.Hooks() {
		hook()
	}
	return nil
}
