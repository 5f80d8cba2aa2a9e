package postgres

import (
	"github.com/google/uuid"

	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// NewStores wires every port over one pool or tx. Events are read and
// written for runID only.
func NewStores(q Querier, runID uuid.UUID) repositories.Stores {
	return repositories.Stores{
		Products:            NewProductRepository(q),
		BOM:                 NewBOMRepository(q),
		Suppliers:           NewSupplierRepository(q),
		Stock:               NewStockRepository(q),
		ManufacturingOrders: NewManufacturingOrderRepository(q),
		PurchaseOrders:      NewPurchaseOrderRepository(q),
		Events:              NewEventRepository(q, runID),
		Tx:                  NewTxRunner(q),
	}
}
