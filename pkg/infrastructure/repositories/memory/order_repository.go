package memory

import (
	"context"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// ManufacturingOrderRepository provides in-memory manufacturing order storage
type ManufacturingOrderRepository struct {
	orders *table[entities.OrderID, entities.ManufacturingOrder]
}

// NewManufacturingOrderRepository creates a new in-memory manufacturing order repository
func NewManufacturingOrderRepository() *ManufacturingOrderRepository {
	return &ManufacturingOrderRepository{
		orders: newTable[entities.OrderID, entities.ManufacturingOrder](64),
	}
}

// Verify interface compliance
var _ repositories.ManufacturingOrderRepository = (*ManufacturingOrderRepository)(nil)

// Checkpoint copies the stored rows for a later restore
func (r *ManufacturingOrderRepository) Checkpoint() func() {
	return r.orders.checkpoint()
}

func (r *ManufacturingOrderRepository) GetByID(_ context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error) {
	o, ok := r.orders.get(id)
	if !ok {
		return nil, entities.NotFoundError("manufacturing order", id)
	}
	return &o, nil
}

func (r *ManufacturingOrderRepository) GetAll(_ context.Context) ([]*entities.ManufacturingOrder, error) {
	return pointers(r.orders.sorted(nil)), nil
}

func (r *ManufacturingOrderRepository) GetByStatus(_ context.Context, status entities.ManufacturingStatus) ([]*entities.ManufacturingOrder, error) {
	return pointers(r.orders.sorted(func(o entities.ManufacturingOrder) bool { return o.Status == status })), nil
}

// GetByDateRange filters on the creation date
func (r *ManufacturingOrderRepository) GetByDateRange(_ context.Context, dr entities.DateRange) ([]*entities.ManufacturingOrder, error) {
	return pointers(r.orders.sorted(func(o entities.ManufacturingOrder) bool { return dr.Contains(o.CreatedAt) })), nil
}

func (r *ManufacturingOrderRepository) Add(_ context.Context, order *entities.ManufacturingOrder) (*entities.ManufacturingOrder, error) {
	o := *order
	if o.ID == 0 {
		o.ID = r.orders.reserve()
	}
	if !r.orders.insert(o.ID, o) {
		return nil, entities.NewValidationError("id", "manufacturing order %d already exists", o.ID)
	}
	return &o, nil
}

func (r *ManufacturingOrderRepository) Update(_ context.Context, order *entities.ManufacturingOrder) error {
	if !r.orders.replace(order.ID, *order) {
		return entities.NotFoundError("manufacturing order", order.ID)
	}
	return nil
}

func (r *ManufacturingOrderRepository) Delete(_ context.Context, id entities.OrderID) error {
	if !r.orders.remove(id) {
		return entities.NotFoundError("manufacturing order", id)
	}
	return nil
}

// PurchaseOrderRepository provides in-memory purchase order storage
type PurchaseOrderRepository struct {
	orders *table[entities.PurchaseOrderID, entities.PurchaseOrder]
}

// NewPurchaseOrderRepository creates a new in-memory purchase order repository
func NewPurchaseOrderRepository() *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		orders: newTable[entities.PurchaseOrderID, entities.PurchaseOrder](64),
	}
}

// Verify interface compliance
var _ repositories.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

// Checkpoint copies the stored rows for a later restore
func (r *PurchaseOrderRepository) Checkpoint() func() {
	return r.orders.checkpoint()
}

func (r *PurchaseOrderRepository) GetByID(_ context.Context, id entities.PurchaseOrderID) (*entities.PurchaseOrder, error) {
	o, ok := r.orders.get(id)
	if !ok {
		return nil, entities.NotFoundError("purchase order", id)
	}
	return &o, nil
}

func (r *PurchaseOrderRepository) GetAll(_ context.Context) ([]*entities.PurchaseOrder, error) {
	return pointers(r.orders.sorted(nil)), nil
}

func (r *PurchaseOrderRepository) GetByStatus(_ context.Context, status entities.PurchaseStatus) ([]*entities.PurchaseOrder, error) {
	return pointers(r.orders.sorted(func(o entities.PurchaseOrder) bool { return o.Status == status })), nil
}

func (r *PurchaseOrderRepository) GetByProduct(_ context.Context, id entities.ProductID) ([]*entities.PurchaseOrder, error) {
	return pointers(r.orders.sorted(func(o entities.PurchaseOrder) bool { return o.ProductID == id })), nil
}

func (r *PurchaseOrderRepository) GetByDateRange(_ context.Context, dr entities.DateRange) ([]*entities.PurchaseOrder, error) {
	return pointers(r.orders.sorted(func(o entities.PurchaseOrder) bool { return dr.Contains(o.IssueDate) })), nil
}

func (r *PurchaseOrderRepository) Add(_ context.Context, order *entities.PurchaseOrder) (*entities.PurchaseOrder, error) {
	o := *order
	if o.ID == 0 {
		o.ID = r.orders.reserve()
	}
	if !r.orders.insert(o.ID, o) {
		return nil, entities.NewValidationError("id", "purchase order %d already exists", o.ID)
	}
	return &o, nil
}

func (r *PurchaseOrderRepository) Update(_ context.Context, order *entities.PurchaseOrder) error {
	if !r.orders.replace(order.ID, *order) {
		return entities.NotFoundError("purchase order", order.ID)
	}
	return nil
}

func (r *PurchaseOrderRepository) Delete(_ context.Context, id entities.PurchaseOrderID) error {
	if !r.orders.remove(id) {
		return entities.NotFoundError("purchase order", id)
	}
	return nil
}
