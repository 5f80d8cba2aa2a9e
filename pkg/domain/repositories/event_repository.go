package repositories

import (
	"context"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// EventRepository is the append-only sink behind the event recorder.
// Events are returned in ascending id order.
type EventRepository interface {
	Add(ctx context.Context, event entities.Event) (entities.Event, error)
	GetAll(ctx context.Context) ([]entities.Event, error)
	GetByType(ctx context.Context, t entities.EventType) ([]entities.Event, error)
	GetByDateRange(ctx context.Context, r entities.DateRange) ([]entities.Event, error)
	Find(ctx context.Context, filter entities.EventFilter) ([]entities.Event, error)
	// LastID returns the highest stored id, zero for an empty log.
	LastID(ctx context.Context) (entities.EventID, error)
}

// Stores bundles every port the simulation needs
type Stores struct {
	Products            ProductRepository
	BOM                 BOMRepository
	Suppliers           SupplierRepository
	Stock               StockRepository
	ManufacturingOrders ManufacturingOrderRepository
	PurchaseOrders      PurchaseOrderRepository
	Events              EventRepository
	Tx                  TxRunner
}

// TxRunner runs fn as one unit of work. Store writes made with the ctx
// handed to fn are committed together or not at all.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}
