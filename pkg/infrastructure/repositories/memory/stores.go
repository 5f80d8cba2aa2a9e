package memory

import (
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
)

// NewStores wires a complete set of in-memory stores sharing one TxRunner
func NewStores() repositories.Stores {
	products := NewProductRepository(16)
	bom := NewBOMRepository(32)
	suppliers := NewSupplierRepository(16)
	stock := NewStockRepository()
	manufacturing := NewManufacturingOrderRepository()
	purchases := NewPurchaseOrderRepository()
	eventStore := events.NewInMemoryEventStore()

	return repositories.Stores{
		Products:            products,
		BOM:                 bom,
		Suppliers:           suppliers,
		Stock:               stock,
		ManufacturingOrders: manufacturing,
		PurchaseOrders:      purchases,
		Events:              eventStore,
		Tx:                  NewTxRunner(products, bom, suppliers, stock, manufacturing, purchases, eventStore),
	}
}
