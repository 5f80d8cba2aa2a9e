package repositories

import (
	"context"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// StockRepository provides access to on-hand quantities
type StockRepository interface {
	// GetByProduct returns entities.ErrNotFound when no level was ever stored.
	GetByProduct(ctx context.Context, id entities.ProductID) (*entities.StockLevel, error)
	GetAll(ctx context.Context) ([]*entities.StockLevel, error)
	Save(ctx context.Context, level *entities.StockLevel) error
	Delete(ctx context.Context, id entities.ProductID) error
}

// ManufacturingOrderRepository provides access to manufacturing orders.
// Listings are returned in ascending id order.
type ManufacturingOrderRepository interface {
	GetByID(ctx context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error)
	GetAll(ctx context.Context) ([]*entities.ManufacturingOrder, error)
	GetByStatus(ctx context.Context, status entities.ManufacturingStatus) ([]*entities.ManufacturingOrder, error)
	GetByDateRange(ctx context.Context, r entities.DateRange) ([]*entities.ManufacturingOrder, error)
	Add(ctx context.Context, order *entities.ManufacturingOrder) (*entities.ManufacturingOrder, error)
	Update(ctx context.Context, order *entities.ManufacturingOrder) error
	Delete(ctx context.Context, id entities.OrderID) error
}

// PurchaseOrderRepository provides access to purchase orders.
// Listings are returned in ascending id order.
type PurchaseOrderRepository interface {
	GetByID(ctx context.Context, id entities.PurchaseOrderID) (*entities.PurchaseOrder, error)
	GetAll(ctx context.Context) ([]*entities.PurchaseOrder, error)
	GetByStatus(ctx context.Context, status entities.PurchaseStatus) ([]*entities.PurchaseOrder, error)
	GetByProduct(ctx context.Context, id entities.ProductID) ([]*entities.PurchaseOrder, error)
	// GetByDateRange filters on the issue date.
	GetByDateRange(ctx context.Context, r entities.DateRange) ([]*entities.PurchaseOrder, error)
	Add(ctx context.Context, order *entities.PurchaseOrder) (*entities.PurchaseOrder, error)
	Update(ctx context.Context, order *entities.PurchaseOrder) error
	Delete(ctx context.Context, id entities.PurchaseOrderID) error
}
