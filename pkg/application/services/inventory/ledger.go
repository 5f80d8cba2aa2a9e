package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
)

// Journal records ledger movements. Atomic groups store writes and events
// into one unit that is kept or dropped as a whole.
type Journal interface {
	Append(ctx context.Context, event entities.Event) (entities.Event, error)
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// Ledger owns on-hand quantities. Every change is checked against the
// current level and recorded as a stock_changed event.
type Ledger struct {
	mu       sync.Mutex
	stock    repositories.StockRepository
	products repositories.ProductRepository
	journal  Journal
}

// NewLedger creates a ledger over the given stores
func NewLedger(stock repositories.StockRepository, products repositories.ProductRepository, journal Journal) *Ledger {
	return &Ledger{
		stock:    stock,
		products: products,
		journal:  journal,
	}
}

// Get returns the on-hand quantity of a product, zero when none was ever stocked
func (l *Ledger) Get(ctx context.Context, id entities.ProductID) (entities.Quantity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.current(ctx, id)
}

func (l *Ledger) current(ctx context.Context, id entities.ProductID) (entities.Quantity, error) {
	level, err := l.stock.GetByProduct(ctx, id)
	if err == nil {
		return level.Quantity, nil
	}
	if !errors.Is(err, entities.ErrNotFound) {
		return 0, fmt.Errorf("read stock of product %d: %w", id, err)
	}

	if _, err := l.products.GetByID(ctx, id); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return 0, entities.NewValidationError("product_id", "unknown product %d", id)
		}
		return 0, fmt.Errorf("read product %d: %w", id, err)
	}
	return 0, nil
}

// TryAdjust applies delta to a product's level. A change that would leave
// the level negative fails with InsufficientStockError and changes nothing.
// The level and its stock_changed event are written as one unit.
func (l *Ledger) TryAdjust(ctx context.Context, id entities.ProductID, delta entities.Quantity, reason string) (entities.Quantity, error) {
	if strings.TrimSpace(reason) == "" {
		return 0, entities.NewValidationError("reason", "reason cannot be empty")
	}

	var previous, next entities.Quantity
	err := l.journal.Atomic(ctx, func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		var err error
		previous, err = l.current(ctx, id)
		if err != nil {
			return err
		}
		next = previous + delta
		if delta == 0 {
			return nil
		}
		if next < 0 {
			return &entities.InsufficientStockError{Shortages: []entities.Shortage{
				{ProductID: id, Required: -delta, Available: previous},
			}}
		}

		if err := l.stock.Save(ctx, &entities.StockLevel{ProductID: id, Quantity: next}); err != nil {
			return fmt.Errorf("save stock of product %d: %w", id, err)
		}
		_, err = l.journal.Append(ctx, events.NewStockChangedEvent(id, previous, next, reason))
		return err
	})
	if err != nil {
		return previous, err
	}
	return next, nil
}

// Shortages returns every requirement the current levels cannot cover,
// in ascending product id order.
func (l *Ledger) Shortages(ctx context.Context, reqs entities.Requirements) ([]entities.Shortage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	shortages, _, err := l.check(ctx, reqs)
	return shortages, err
}

func (l *Ledger) check(ctx context.Context, reqs entities.Requirements) ([]entities.Shortage, map[entities.ProductID]entities.Quantity, error) {
	levels := make(map[entities.ProductID]entities.Quantity, len(reqs))
	var shortages []entities.Shortage

	for _, id := range sortedIDs(reqs) {
		required := reqs[id]
		if required < 0 {
			return nil, nil, entities.NewValidationError("quantity", "requirement for product %d cannot be negative", id)
		}
		available, err := l.current(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		levels[id] = available
		if available < required {
			shortages = append(shortages, entities.Shortage{ProductID: id, Required: required, Available: available})
		}
	}
	return shortages, levels, nil
}

// Consume removes every requirement in one step. When any material is short
// nothing is removed and the error lists all shortages. A failed write
// leaves every level as it was.
func (l *Ledger) Consume(ctx context.Context, reqs entities.Requirements, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return entities.NewValidationError("reason", "reason cannot be empty")
	}

	return l.journal.Atomic(ctx, func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		shortages, levels, err := l.check(ctx, reqs)
		if err != nil {
			return err
		}
		if len(shortages) > 0 {
			return &entities.InsufficientStockError{Shortages: shortages}
		}

		for _, id := range sortedIDs(reqs) {
			if reqs[id] == 0 {
				continue
			}
			next := levels[id] - reqs[id]
			if err := l.stock.Save(ctx, &entities.StockLevel{ProductID: id, Quantity: next}); err != nil {
				return fmt.Errorf("save stock of product %d: %w", id, err)
			}
			if _, err := l.journal.Append(ctx, events.NewStockChangedEvent(id, levels[id], next, reason)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Levels returns every stored level ordered by product id
func (l *Ledger) Levels(ctx context.Context) ([]*entities.StockLevel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.stock.GetAll(ctx)
}

// Total returns the sum of all on-hand quantities
func (l *Ledger) Total(ctx context.Context) (entities.Quantity, error) {
	levels, err := l.Levels(ctx)
	if err != nil {
		return 0, err
	}
	var total entities.Quantity
	for _, level := range levels {
		total += level.Quantity
	}
	return total, nil
}

func sortedIDs(reqs entities.Requirements) []entities.ProductID {
	ids := make([]entities.ProductID, 0, len(reqs))
	for id := range reqs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
