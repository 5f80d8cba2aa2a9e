package memory

import (
	"context"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// SupplierRepository provides in-memory supplier storage
type SupplierRepository struct {
	suppliers *table[entities.SupplierID, entities.Supplier]
}

// NewSupplierRepository creates a new in-memory supplier repository
func NewSupplierRepository(expectedSuppliers int) *SupplierRepository {
	return &SupplierRepository{
		suppliers: newTable[entities.SupplierID, entities.Supplier](expectedSuppliers),
	}
}

// Verify interface compliance
var _ repositories.SupplierRepository = (*SupplierRepository)(nil)

// Checkpoint copies the stored rows for a later restore
func (r *SupplierRepository) Checkpoint() func() {
	return r.suppliers.checkpoint()
}

// GetByID returns the supplier with the given id
func (r *SupplierRepository) GetByID(_ context.Context, id entities.SupplierID) (*entities.Supplier, error) {
	s, ok := r.suppliers.get(id)
	if !ok {
		return nil, entities.NotFoundError("supplier", id)
	}
	return &s, nil
}

// GetAll returns all suppliers ordered by id
func (r *SupplierRepository) GetAll(_ context.Context) ([]*entities.Supplier, error) {
	return pointers(r.suppliers.sorted(nil)), nil
}

// GetByProduct returns the suppliers offering a product
func (r *SupplierRepository) GetByProduct(_ context.Context, id entities.ProductID) ([]*entities.Supplier, error) {
	return pointers(r.suppliers.sorted(func(s entities.Supplier) bool { return s.ProductID == id })), nil
}

// Add stores a supplier, assigning an id when none is set
func (r *SupplierRepository) Add(_ context.Context, supplier *entities.Supplier) (*entities.Supplier, error) {
	s := *supplier
	if s.ID == 0 {
		s.ID = r.suppliers.reserve()
	}
	if !r.suppliers.insert(s.ID, s) {
		return nil, entities.NewValidationError("id", "supplier %d already exists", s.ID)
	}
	return &s, nil
}

// Update replaces a stored supplier
func (r *SupplierRepository) Update(_ context.Context, supplier *entities.Supplier) error {
	if !r.suppliers.replace(supplier.ID, *supplier) {
		return entities.NotFoundError("supplier", supplier.ID)
	}
	return nil
}

// Delete removes a supplier
func (r *SupplierRepository) Delete(_ context.Context, id entities.SupplierID) error {
	if !r.suppliers.remove(id) {
		return entities.NotFoundError("supplier", id)
	}
	return nil
}
