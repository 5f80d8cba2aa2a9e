package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

type txKey struct{}

// TxRunner runs callbacks inside one PostgreSQL transaction. Repositories
// pick the transaction up from the ctx handed to the callback.
type TxRunner struct {
	q Querier
}

var _ repositories.TxRunner = (*TxRunner)(nil)

// NewTxRunner begins transactions on q. When q is itself a pgx.Tx each
// Run becomes a savepoint.
func NewTxRunner(q Querier) *TxRunner {
	return &TxRunner{q: q}
}

// Run begins a transaction, runs fn and commits, rolling back when fn fails.
// A Run inside fn joins the outer transaction.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// conn returns the transaction carried by ctx, or q outside of one
func conn(ctx context.Context, q Querier) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return q
}
