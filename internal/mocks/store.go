package mocks

import (
	"context"

	"marketplace-chat/internal/repositories"
)

// FakeStore is a Store that runs the transaction body directly and fires
// post-commit hooks on success, mirroring the real commit semantics without
// a database.
type FakeStore struct {
	// BeginErr, when set, fails WithinTx before the body runs.
	BeginErr error
}

func (s *FakeStore) Reader() repositories.Querier { return nil }

func (s *FakeStore) WithinTx(ctx context.Context, fn func(tx *repositories.Tx) error) error {
	if s.BeginErr != nil {
		return s.BeginErr
	}

	tx := &repositories.Tx{}
	if err := fn(tx); err != nil {
		return err
	}
	for _, hook := range tx.Hooks() {
		hook()
	}
	return nil
}

var _ repositories.Store = (*FakeStore)(nil)
