package memory

import (
	"context"
	"sync"

	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// Checkpointer is a store that can copy its state and later restore it
type Checkpointer interface {
	Checkpoint() (restore func())
}

type txKey struct{}

// TxRunner gives in-memory stores all-or-nothing writes. Run checkpoints
// every store before fn and restores them all when fn fails.
type TxRunner struct {
	mu     sync.Mutex
	stores []Checkpointer
}

var _ repositories.TxRunner = (*TxRunner)(nil)

// NewTxRunner covers the given stores
func NewTxRunner(stores ...Checkpointer) *TxRunner {
	return &TxRunner{stores: stores}
}

// Run executes fn as one unit. A Run inside fn joins the outer one.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == r {
		return fn(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	restores := make([]func(), len(r.stores))
	for i, s := range r.stores {
		restores[i] = s.Checkpoint()
	}

	if err := fn(context.WithValue(ctx, txKey{}, r)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
