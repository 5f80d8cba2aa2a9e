package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
)

// StockLedger credits received goods
type StockLedger interface {
	TryAdjust(ctx context.Context, id entities.ProductID, delta entities.Quantity, reason string) (entities.Quantity, error)
}

// Journal records purchase transitions. Atomic makes the order write, the
// stock credit and the events one unit.
type Journal interface {
	Append(ctx context.Context, event entities.Event) (entities.Event, error)
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// Manager owns the purchase order lifecycle: ordered -> received, or ordered -> cancelled
type Manager struct {
	orders    repositories.PurchaseOrderRepository
	suppliers repositories.SupplierRepository
	products  repositories.ProductRepository
	ledger    StockLedger
	journal   Journal
	clock     events.DateSource
}

// NewManager creates a purchasing manager
func NewManager(
	orders repositories.PurchaseOrderRepository,
	suppliers repositories.SupplierRepository,
	products repositories.ProductRepository,
	ledger StockLedger,
	journal Journal,
	clock events.DateSource,
) *Manager {
	return &Manager{
		orders:    orders,
		suppliers: suppliers,
		products:  products,
		ledger:    ledger,
		journal:   journal,
		clock:     clock,
	}
}

// Create issues a purchase order today. The delivery date is today plus the
// supplier's lead time.
func (m *Manager) Create(ctx context.Context, supplierID entities.SupplierID, productID entities.ProductID, qty entities.Quantity) (*entities.PurchaseOrder, error) {
	supplier, err := m.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, entities.NewValidationError("supplier_id", "unknown supplier %d", supplierID)
		}
		return nil, fmt.Errorf("read supplier %d: %w", supplierID, err)
	}

	product, err := m.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, entities.NewValidationError("product_id", "unknown product %d", productID)
		}
		return nil, fmt.Errorf("read product %d: %w", productID, err)
	}
	if product.Kind != entities.RawMaterial {
		return nil, entities.NewValidationError("product_id", "product %d (%s) is not a raw material", product.ID, product.Name)
	}

	order, err := entities.NewPurchaseOrder(supplier, productID, qty, m.clock.Today())
	if err != nil {
		return nil, err
	}
	var stored *entities.PurchaseOrder
	err = m.journal.Atomic(ctx, func(ctx context.Context) error {
		var err error
		if stored, err = m.orders.Add(ctx, order); err != nil {
			return fmt.Errorf("store purchase order: %w", err)
		}
		_, err = m.journal.Append(ctx, events.NewPurchaseCreatedEvent(stored))
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Receive credits the ordered quantity to stock
func (m *Manager) Receive(ctx context.Context, id entities.PurchaseOrderID) (*entities.PurchaseOrder, error) {
	order, err := m.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.receive(ctx, order, m.clock.Today())
}

func (m *Manager) receive(ctx context.Context, order *entities.PurchaseOrder, on time.Time) (*entities.PurchaseOrder, error) {
	next := *order
	if err := next.Receive(on); err != nil {
		return nil, err
	}

	err := m.journal.Atomic(ctx, func(ctx context.Context) error {
		if _, err := m.ledger.TryAdjust(ctx, order.ProductID, order.Quantity, fmt.Sprintf("received from purchase order %d", order.ID)); err != nil {
			return err
		}
		if err := m.orders.Update(ctx, &next); err != nil {
			return fmt.Errorf("update purchase order %d: %w", order.ID, err)
		}
		_, err := m.journal.Append(ctx, events.NewPurchaseReceivedEvent(&next))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// Cancel withdraws an order that has not arrived
func (m *Manager) Cancel(ctx context.Context, id entities.PurchaseOrderID) (*entities.PurchaseOrder, error) {
	order, err := m.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(m.clock.Today()); err != nil {
		return nil, err
	}
	err = m.journal.Atomic(ctx, func(ctx context.Context) error {
		if err := m.orders.Update(ctx, order); err != nil {
			return fmt.Errorf("update purchase order %d: %w", id, err)
		}
		_, err := m.journal.Append(ctx, events.NewPurchaseCancelledEvent(order))
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ReceiveArrived receives every ordered purchase due on or before asOf, in
// id order. Received and cancelled orders are never revisited.
func (m *Manager) ReceiveArrived(ctx context.Context, asOf time.Time) ([]*entities.PurchaseOrder, []dto.Failure, error) {
	open, err := m.orders.GetByStatus(ctx, entities.Ordered)
	if err != nil {
		return nil, nil, fmt.Errorf("list open purchase orders: %w", err)
	}

	var received []*entities.PurchaseOrder
	var failures []dto.Failure
	for _, o := range open {
		if !o.IsDue(asOf) {
			continue
		}
		next, err := m.receive(ctx, o, asOf)
		if err != nil {
			failures = append(failures, dto.NewFailure(dto.StepReceive, int64(o.ID), o.ProductID, err))
			continue
		}
		received = append(received, next)
	}
	return received, failures, nil
}

// Get returns one purchase order
func (m *Manager) Get(ctx context.Context, id entities.PurchaseOrderID) (*entities.PurchaseOrder, error) {
	return m.orders.GetByID(ctx, id)
}

// List returns purchase orders in id order, optionally restricted to one status
func (m *Manager) List(ctx context.Context, status *entities.PurchaseStatus) ([]*entities.PurchaseOrder, error) {
	if status == nil {
		return m.orders.GetAll(ctx)
	}
	return m.orders.GetByStatus(ctx, *status)
}

// SuppliersFor lists the suppliers of a product with the day an order
// placed today would arrive
func (m *Manager) SuppliersFor(ctx context.Context, productID entities.ProductID) ([]dto.SupplierOffer, error) {
	if _, err := m.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	suppliers, err := m.suppliers.GetByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list suppliers of product %d: %w", productID, err)
	}

	today := m.clock.Today()
	offers := make([]dto.SupplierOffer, 0, len(suppliers))
	for _, s := range suppliers {
		offers = append(offers, dto.SupplierOffer{Supplier: *s, EstimatedArrival: s.EstimatedArrival(today)})
	}
	return offers, nil
}
