package purchasing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factorysim/pkg/application/services/inventory"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
	fixtures "github.com/vsinha/factorysim/pkg/infrastructure/testing"
)

const (
	printer entities.ProductID = 1
	nozzle  entities.ProductID = 2
	frame   entities.ProductID = 3
)

func setup(t *testing.T) (*fixtures.Fixture, *Manager) {
	t.Helper()

	f := fixtures.NewFixture()
	f.MustAddProduct(printer, "Printer", entities.FinishedGood)
	f.MustAddProduct(nozzle, "Nozzle", entities.RawMaterial)
	f.MustAddProduct(frame, "Frame", entities.RawMaterial)
	f.MustAddSupplier(1, "NozzleCo", nozzle, "2.50", 3)
	f.MustAddSupplier(2, "FastNozzle", nozzle, "4.00", 1)
	f.MustAddSupplier(3, "FrameWorks", frame, "25.00", 5)

	ledger := inventory.NewLedger(f.Stores.Stock, f.Stores.Products, f.Recorder)
	m := NewManager(f.Stores.PurchaseOrders, f.Stores.Suppliers, f.Stores.Products, ledger, f.Recorder, f.Clock)
	return f, m
}

func TestManager_Create(t *testing.T) {
	f, m := setup(t)
	ctx := context.Background()

	order, err := m.Create(ctx, 1, nozzle, 40)
	require.NoError(t, err)
	assert.Equal(t, entities.Ordered, order.Status)
	assert.Equal(t, fixtures.Day1, order.IssueDate)
	assert.Equal(t, entities.AddDays(fixtures.Day1, 3), order.EstimatedDeliveryDate)
	assert.True(t, decimal.RequireFromString("100").Equal(order.TotalCost()))

	created := f.EventsOfType(entities.EventPurchaseCreated)
	require.Len(t, created, 1)
	details := created[0].Details.(events.PurchaseCreated)
	assert.Equal(t, "2025-01-04", details.EstimatedDeliveryDate)
	assert.True(t, decimal.RequireFromString("2.5").Equal(details.UnitCost))
}

func TestManager_CreateValidation(t *testing.T) {
	_, m := setup(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		supplier entities.SupplierID
		product  entities.ProductID
		qty      entities.Quantity
	}{
		{"supplier does not supply product", 1, frame, 5},
		{"finished product", 1, printer, 5},
		{"unknown supplier", 99, nozzle, 5},
		{"unknown product", 1, 77, 5},
		{"zero quantity", 1, nozzle, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Create(ctx, tc.supplier, tc.product, tc.qty)
			assert.ErrorIs(t, err, entities.ErrValidation)
		})
	}
}

func TestManager_ReceiveCreditsStock(t *testing.T) {
	f, m := setup(t)
	ctx := context.Background()

	order, err := m.Create(ctx, 3, frame, 7)
	require.NoError(t, err)

	received, err := m.Receive(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Received, received.Status)
	assert.Equal(t, entities.Quantity(7), f.Stock(frame))

	_, err = m.Receive(ctx, order.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidState)
	_, err = m.Cancel(ctx, order.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidState)
	assert.Equal(t, entities.Quantity(7), f.Stock(frame))
}

func TestManager_ReceiveArrivedExactlyOnce(t *testing.T) {
	f, m := setup(t)
	ctx := context.Background()

	slow, err := m.Create(ctx, 1, nozzle, 10) // arrives day 4
	require.NoError(t, err)
	fast, err := m.Create(ctx, 2, nozzle, 5) // arrives day 2
	require.NoError(t, err)

	received, failures, err := m.ReceiveArrived(ctx, entities.AddDays(fixtures.Day1, 1))
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, received, 1)
	assert.Equal(t, fast.ID, received[0].ID)
	assert.Equal(t, entities.Quantity(5), f.Stock(nozzle))

	for day := 2; day <= 6; day++ {
		_, _, err := m.ReceiveArrived(ctx, entities.AddDays(fixtures.Day1, day))
		require.NoError(t, err)
	}

	assert.Equal(t, entities.Quantity(15), f.Stock(nozzle))
	assert.Len(t, f.EventsOfType(entities.EventPurchaseReceived), 2)

	stored, err := m.Get(ctx, slow.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Received, stored.Status)
	require.NotNil(t, stored.ReceivedAt)
	assert.Equal(t, entities.AddDays(fixtures.Day1, 3), *stored.ReceivedAt)
}

func TestManager_CancelledOrderNeverArrives(t *testing.T) {
	f, m := setup(t)
	ctx := context.Background()

	order, err := m.Create(ctx, 2, nozzle, 5)
	require.NoError(t, err)
	_, err = m.Cancel(ctx, order.ID)
	require.NoError(t, err)

	received, _, err := m.ReceiveArrived(ctx, entities.AddDays(fixtures.Day1, 10))
	require.NoError(t, err)
	assert.Empty(t, received)
	assert.Zero(t, f.Stock(nozzle))
	assert.Len(t, f.EventsOfType(entities.EventPurchaseCancelled), 1)
}

func TestManager_SuppliersFor(t *testing.T) {
	_, m := setup(t)
	ctx := context.Background()

	offers, err := m.SuppliersFor(ctx, nozzle)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, "NozzleCo", offers[0].Supplier.Name)
	assert.Equal(t, entities.AddDays(fixtures.Day1, 3), offers[0].EstimatedArrival)
	assert.Equal(t, entities.AddDays(fixtures.Day1, 1), offers[1].EstimatedArrival)

	_, err = m.SuppliersFor(ctx, 404)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestManager_ReceiveRollsBackWhenEventFails(t *testing.T) {
	f, _ := setup(t)
	ctx := context.Background()
	boom := errors.New("event log unavailable")

	journal := f.FailingJournal(entities.EventPurchaseReceived, boom)
	ledger := inventory.NewLedger(f.Stores.Stock, f.Stores.Products, journal)
	m := NewManager(f.Stores.PurchaseOrders, f.Stores.Suppliers, f.Stores.Products, ledger, journal, f.Clock)

	order, err := m.Create(ctx, 2, nozzle, 10)
	require.NoError(t, err)
	due := order.EstimatedDeliveryDate

	for range 2 {
		received, failures, err := m.ReceiveArrived(ctx, due)
		require.NoError(t, err)
		assert.Empty(t, received)
		require.Len(t, failures, 1)
		assert.Equal(t, int64(order.ID), failures[0].OrderID)
	}

	assert.Equal(t, entities.Quantity(0), f.Stock(nozzle), "a failed receipt credits nothing")
	assert.Empty(t, f.EventsOfType(entities.EventStockChanged))
	stored, err := m.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Ordered, stored.Status)

	journal.FailOn = ""
	received, failures, err := m.ReceiveArrived(ctx, due)
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, received, 1)
	assert.Equal(t, entities.Quantity(10), f.Stock(nozzle))

	received, _, err = m.ReceiveArrived(ctx, due)
	require.NoError(t, err)
	assert.Empty(t, received)
	assert.Equal(t, entities.Quantity(10), f.Stock(nozzle), "a received order is never credited twice")
	assert.Len(t, f.EventsOfType(entities.EventPurchaseReceived), 1)
}
