package testing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/domain/services"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
	"github.com/vsinha/factorysim/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/factorysim/pkg/infrastructure/seed"
)

// Day1 is the first simulated day of every fixture
var Day1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Fixture bundles in-memory stores, a clock and a recorder for tests
type Fixture struct {
	Stores     repositories.Stores
	Clock      *services.Clock
	Recorder   *events.Recorder
	EventStore *events.InMemoryEventStore
}

// NewFixture builds empty in-memory stores with the clock on Day1
func NewFixture() *Fixture {
	stores := memory.NewStores()
	clock := services.NewClock(Day1)

	eventStore := stores.Events.(*events.InMemoryEventStore)
	recorder, err := events.NewRecorder(context.Background(), eventStore, stores.Tx, clock, uuid.New())
	if err != nil {
		panic(err)
	}

	return &Fixture{
		Stores:     stores,
		Clock:      clock,
		Recorder:   recorder,
		EventStore: eventStore,
	}
}

// MustAddProduct is a helper for tests - panics on validation error
func (f *Fixture) MustAddProduct(id entities.ProductID, name string, kind entities.ProductKind) *entities.Product {
	p, err := entities.NewProduct(id, name, kind)
	if err != nil {
		panic(err)
	}
	stored, err := f.Stores.Products.Add(context.Background(), p)
	if err != nil {
		panic(err)
	}
	return stored
}

// MustAddBOM is a helper for tests - panics on validation error
func (f *Fixture) MustAddBOM(finishedID, materialID entities.ProductID, qty entities.Quantity) {
	e, err := entities.NewBOMEntry(finishedID, materialID, qty)
	if err != nil {
		panic(err)
	}
	if _, err := f.Stores.BOM.Add(context.Background(), e); err != nil {
		panic(err)
	}
}

// MustAddSupplier is a helper for tests - panics on validation error
func (f *Fixture) MustAddSupplier(id entities.SupplierID, name string, productID entities.ProductID, unitCost string, leadTimeDays int) *entities.Supplier {
	s, err := entities.NewSupplier(id, name, productID, decimal.RequireFromString(unitCost), leadTimeDays)
	if err != nil {
		panic(err)
	}
	stored, err := f.Stores.Suppliers.Add(context.Background(), s)
	if err != nil {
		panic(err)
	}
	return stored
}

// MustSetStock writes a level directly, without recording an event
func (f *Fixture) MustSetStock(id entities.ProductID, qty entities.Quantity) {
	if err := f.Stores.Stock.Save(context.Background(), &entities.StockLevel{ProductID: id, Quantity: qty}); err != nil {
		panic(err)
	}
}

// Stock reads a level, zero when absent
func (f *Fixture) Stock(id entities.ProductID) entities.Quantity {
	level, err := f.Stores.Stock.GetByProduct(context.Background(), id)
	if err != nil {
		return 0
	}
	return level.Quantity
}

// LoadPrinterFactory loads the default 3D printer catalogue and opening stock
func (f *Fixture) LoadPrinterFactory() {
	if err := seed.Load(context.Background(), f.Stores, seed.PrinterFactory(), directStock{f}); err != nil {
		panic(err)
	}
}

// EventsOfType returns the recorded events of one type
func (f *Fixture) EventsOfType(t entities.EventType) []entities.Event {
	out, err := f.EventStore.GetByType(context.Background(), t)
	if err != nil {
		panic(err)
	}
	return out
}

// AllEvents returns every recorded event
func (f *Fixture) AllEvents() []entities.Event {
	out, err := f.EventStore.GetAll(context.Background())
	if err != nil {
		panic(err)
	}
	return out
}

// FailingJournal wraps the fixture recorder and fails appends of FailOn
// with Err once Skip of them went through. Atomic still goes through the
// real recorder.
type FailingJournal struct {
	*events.Recorder
	FailOn entities.EventType
	Skip   int
	Err    error
}

// FailingJournal returns a journal that rejects events of type t
func (f *Fixture) FailingJournal(t entities.EventType, err error) *FailingJournal {
	return &FailingJournal{Recorder: f.Recorder, FailOn: t, Err: err}
}

func (j *FailingJournal) Append(ctx context.Context, event entities.Event) (entities.Event, error) {
	if event.Type == j.FailOn {
		if j.Skip <= 0 {
			return entities.Event{}, j.Err
		}
		j.Skip--
	}
	return j.Recorder.Append(ctx, event)
}

type directStock struct{ f *Fixture }

func (d directStock) TryAdjust(_ context.Context, id entities.ProductID, delta entities.Quantity, _ string) (entities.Quantity, error) {
	next := d.f.Stock(id) + delta
	d.f.MustSetStock(id, next)
	return next, nil
}
