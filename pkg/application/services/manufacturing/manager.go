package manufacturing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
)

// MaterialResolver expands an order into material requirements
type MaterialResolver interface {
	MaterialsFor(ctx context.Context, productID entities.ProductID, qty entities.Quantity) (entities.Requirements, error)
}

// StockLedger is the part of the inventory ledger orders move stock through
type StockLedger interface {
	Get(ctx context.Context, id entities.ProductID) (entities.Quantity, error)
	TryAdjust(ctx context.Context, id entities.ProductID, delta entities.Quantity, reason string) (entities.Quantity, error)
	Consume(ctx context.Context, reqs entities.Requirements, reason string) error
}

// Journal records order transitions. Atomic makes the order write, its
// stock movements and its events one unit.
type Journal interface {
	Append(ctx context.Context, event entities.Event) (entities.Event, error)
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// Manager owns the manufacturing order lifecycle:
// pending -> in_production -> completed, or pending -> cancelled.
type Manager struct {
	orders   repositories.ManufacturingOrderRepository
	products repositories.ProductRepository
	resolver MaterialResolver
	ledger   StockLedger
	journal  Journal
	clock    events.DateSource
}

// NewManager creates a manufacturing order manager
func NewManager(
	orders repositories.ManufacturingOrderRepository,
	products repositories.ProductRepository,
	resolver MaterialResolver,
	ledger StockLedger,
	journal Journal,
	clock events.DateSource,
) *Manager {
	return &Manager{
		orders:   orders,
		products: products,
		resolver: resolver,
		ledger:   ledger,
		journal:  journal,
		clock:    clock,
	}
}

// Create opens a pending order for a finished product, dated today
func (m *Manager) Create(ctx context.Context, productID entities.ProductID, qty entities.Quantity) (*entities.ManufacturingOrder, error) {
	product, err := m.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, entities.NewValidationError("product_id", "unknown product %d", productID)
		}
		return nil, fmt.Errorf("read product %d: %w", productID, err)
	}
	if !product.IsFinished() {
		return nil, entities.NewValidationError("product_id", "product %d (%s) is not a finished product", product.ID, product.Name)
	}

	order, err := entities.NewManufacturingOrder(productID, qty, m.clock.Today())
	if err != nil {
		return nil, err
	}
	var stored *entities.ManufacturingOrder
	err = m.journal.Atomic(ctx, func(ctx context.Context) error {
		var err error
		if stored, err = m.orders.Add(ctx, order); err != nil {
			return fmt.Errorf("store manufacturing order: %w", err)
		}
		_, err = m.journal.Append(ctx, events.NewOrderCreatedEvent(stored))
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Release consumes the order's materials and moves it into production.
// When any material is short nothing is consumed.
func (m *Manager) Release(ctx context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error) {
	order, err := m.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *order
	if err := next.Release(m.clock.Today()); err != nil {
		return nil, err
	}

	reqs, err := m.resolver.MaterialsFor(ctx, order.ProductID, order.Quantity)
	if err != nil {
		return nil, err
	}

	err = m.journal.Atomic(ctx, func(ctx context.Context) error {
		if err := m.ledger.Consume(ctx, reqs, fmt.Sprintf("consumed by manufacturing order %d", id)); err != nil {
			return err
		}
		if err := m.orders.Update(ctx, &next); err != nil {
			return fmt.Errorf("update manufacturing order %d: %w", id, err)
		}
		_, err := m.journal.Append(ctx, events.NewOrderReleasedEvent(&next, usage(reqs)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// Complete adds the produced quantity to finished stock
func (m *Manager) Complete(ctx context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error) {
	order, err := m.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *order
	if err := next.Complete(m.clock.Today()); err != nil {
		return nil, err
	}

	err = m.journal.Atomic(ctx, func(ctx context.Context) error {
		if _, err := m.ledger.TryAdjust(ctx, order.ProductID, order.Quantity, fmt.Sprintf("produced by manufacturing order %d", id)); err != nil {
			return err
		}
		if err := m.orders.Update(ctx, &next); err != nil {
			return fmt.Errorf("update manufacturing order %d: %w", id, err)
		}
		_, err := m.journal.Append(ctx, events.NewOrderCompletedEvent(&next))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// Cancel withdraws a pending order. No stock moves.
func (m *Manager) Cancel(ctx context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error) {
	order, err := m.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(m.clock.Today()); err != nil {
		return nil, err
	}
	err = m.journal.Atomic(ctx, func(ctx context.Context) error {
		if err := m.orders.Update(ctx, order); err != nil {
			return fmt.Errorf("update manufacturing order %d: %w", id, err)
		}
		_, err := m.journal.Append(ctx, events.NewOrderCancelledEvent(order))
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns one order
func (m *Manager) Get(ctx context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error) {
	return m.orders.GetByID(ctx, id)
}

// List returns orders in id order, optionally restricted to one status
func (m *Manager) List(ctx context.Context, status *entities.ManufacturingStatus) ([]*entities.ManufacturingOrder, error) {
	if status == nil {
		return m.orders.GetAll(ctx)
	}
	return m.orders.GetByStatus(ctx, *status)
}

// ReleaseQueue releases pending orders in ascending id order until limit
// orders went into production or the queue is exhausted. An order that
// fails to release stays pending and does not use up the limit.
func (m *Manager) ReleaseQueue(ctx context.Context, limit int) ([]*entities.ManufacturingOrder, []dto.Failure, error) {
	if limit <= 0 {
		return nil, nil, nil
	}
	pending, err := m.orders.GetByStatus(ctx, entities.Pending)
	if err != nil {
		return nil, nil, fmt.Errorf("list pending orders: %w", err)
	}

	var released []*entities.ManufacturingOrder
	var failures []dto.Failure
	for _, o := range pending {
		if len(released) >= limit {
			break
		}
		next, err := m.Release(ctx, o.ID)
		if err != nil {
			failures = append(failures, dto.NewFailure(dto.StepRelease, int64(o.ID), o.ProductID, err))
			continue
		}
		released = append(released, next)
	}
	return released, failures, nil
}

// CompleteReleasedBefore completes every in-production order released
// before the given day. Orders released on that day wait for the next tick.
func (m *Manager) CompleteReleasedBefore(ctx context.Context, day time.Time) ([]*entities.ManufacturingOrder, []dto.Failure, error) {
	running, err := m.orders.GetByStatus(ctx, entities.InProduction)
	if err != nil {
		return nil, nil, fmt.Errorf("list orders in production: %w", err)
	}

	day = entities.Day(day)
	var completed []*entities.ManufacturingOrder
	var failures []dto.Failure
	for _, o := range running {
		if o.ReleasedAt != nil && !o.ReleasedAt.Before(day) {
			continue
		}
		next, err := m.Complete(ctx, o.ID)
		if err != nil {
			failures = append(failures, dto.NewFailure(dto.StepComplete, int64(o.ID), o.ProductID, err))
			continue
		}
		completed = append(completed, next)
	}
	return completed, failures, nil
}

// PendingWithMaterials reports, for each pending order, whether current
// stock covers its materials
func (m *Manager) PendingWithMaterials(ctx context.Context) ([]dto.OrderMaterials, error) {
	pending, err := m.orders.GetByStatus(ctx, entities.Pending)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}

	names := make(map[entities.ProductID]string)
	out := make([]dto.OrderMaterials, 0, len(pending))
	for _, o := range pending {
		reqs, err := m.resolver.MaterialsFor(ctx, o.ProductID, o.Quantity)
		if err != nil {
			return nil, err
		}

		view := dto.OrderMaterials{Order: *o, CanProduce: true}
		for _, u := range usage(reqs) {
			available, err := m.ledger.Get(ctx, u.ProductID)
			if err != nil {
				return nil, err
			}
			name, err := m.productName(ctx, names, u.ProductID)
			if err != nil {
				return nil, err
			}
			ok := available >= u.Quantity
			view.CanProduce = view.CanProduce && ok
			view.Materials = append(view.Materials, dto.MaterialAvailability{
				ProductID:  u.ProductID,
				Name:       name,
				Required:   u.Quantity,
				Available:  available,
				Sufficient: ok,
			})
		}
		out = append(out, view)
	}
	return out, nil
}

func (m *Manager) productName(ctx context.Context, cache map[entities.ProductID]string, id entities.ProductID) (string, error) {
	if name, ok := cache[id]; ok {
		return name, nil
	}
	p, err := m.products.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("read product %d: %w", id, err)
	}
	cache[id] = p.Name
	return p.Name, nil
}

// usage flattens requirements into product id order, dropping zero lines
func usage(reqs entities.Requirements) []events.MaterialUsage {
	out := make([]events.MaterialUsage, 0, len(reqs))
	for id, q := range reqs {
		if q > 0 {
			out = append(out, events.MaterialUsage{ProductID: id, Quantity: q})
		}
	}
	slices.SortFunc(out, func(a, b events.MaterialUsage) int { return cmp.Compare(a.ProductID, b.ProductID) })
	return out
}
