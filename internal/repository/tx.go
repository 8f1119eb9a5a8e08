package repository

import (
	"context"
	"errors"
	"fmt"
)

var errNoDB = errors.New("repository is not bound to a database")

// WithTx begins a transaction, runs fn with repositories bound to it, and
// commits on success or rolls back on error/panic. Panics are rethrown.
// The transaction is always released before WithTx returns.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) (err error) {
	if r.db == nil {
		return errNoDB
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit transaction: %w", cerr)
		}
	}()

	err = fn(bind(tx))
	return err
}
