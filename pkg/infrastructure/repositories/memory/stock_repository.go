package memory

import (
	"context"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// StockRepository provides in-memory stock level storage
type StockRepository struct {
	levels *table[entities.ProductID, entities.StockLevel]
}

// NewStockRepository creates a new in-memory stock repository
func NewStockRepository() *StockRepository {
	return &StockRepository{
		levels: newTable[entities.ProductID, entities.StockLevel](16),
	}
}

// Verify interface compliance
var _ repositories.StockRepository = (*StockRepository)(nil)

// Checkpoint copies the stored rows for a later restore
func (r *StockRepository) Checkpoint() func() {
	return r.levels.checkpoint()
}

// GetByProduct returns the stored level of a product
func (r *StockRepository) GetByProduct(_ context.Context, id entities.ProductID) (*entities.StockLevel, error) {
	level, ok := r.levels.get(id)
	if !ok {
		return nil, entities.NotFoundError("stock level", id)
	}
	return &level, nil
}

// GetAll returns every stored level ordered by product id
func (r *StockRepository) GetAll(_ context.Context) ([]*entities.StockLevel, error) {
	return pointers(r.levels.sorted(nil)), nil
}

// Save inserts or replaces a level
func (r *StockRepository) Save(_ context.Context, level *entities.StockLevel) error {
	if level.Quantity < 0 {
		return entities.NewValidationError("quantity", "stock cannot be negative, got %d", level.Quantity)
	}
	r.levels.put(level.ProductID, *level)
	return nil
}

// Delete removes a product's level
func (r *StockRepository) Delete(_ context.Context, id entities.ProductID) error {
	if !r.levels.remove(id) {
		return entities.NotFoundError("stock level", id)
	}
	return nil
}
