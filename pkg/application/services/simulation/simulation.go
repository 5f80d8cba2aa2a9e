package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/application/services/bom"
	"github.com/vsinha/factorysim/pkg/application/services/demand"
	"github.com/vsinha/factorysim/pkg/application/services/inventory"
	"github.com/vsinha/factorysim/pkg/application/services/manufacturing"
	"github.com/vsinha/factorysim/pkg/application/services/purchasing"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/domain/services"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
	"github.com/vsinha/factorysim/pkg/infrastructure/seed"
	"github.com/vsinha/factorysim/pkg/logger"
)

// Simulation is one running factory. Every operation, including reads,
// holds the same lock so no caller sees a half-finished tick.
type Simulation struct {
	mu sync.Mutex

	cfg        Config
	stores     repositories.Stores
	clock      *services.Clock
	recorder   *events.Recorder
	ledger     *inventory.Ledger
	orders     *manufacturing.Manager
	purchasing *purchasing.Manager
	scheduler  *Scheduler
	log        *logger.Logger
}

type options struct {
	log       *logger.Logger
	runID     uuid.UUID
	source    demand.Source
	observers []DayObserver
}

// Option customizes New
type Option func(*options)

// WithLogger sets the logger, a no-op logger by default
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRunID continues an existing run instead of starting a new one
func WithRunID(id uuid.UUID) Option {
	return func(o *options) { o.runID = id }
}

// WithDemandSource replaces the seeded random stream
func WithDemandSource(src demand.Source) Option {
	return func(o *options) { o.source = src }
}

// WithObserver registers a DayObserver. Observers run in registration order.
func WithObserver(obs DayObserver) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// New wires the components over the given stores
func New(ctx context.Context, cfg Config, stores repositories.Stores, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.InitialDay = entities.Day(cfg.InitialDay)

	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		if cfg.Seed == 0 {
			cfg.Seed = uint64(time.Now().UnixNano())
		}
		o.source = demand.NewSource(cfg.Seed)
	}

	generator, err := demand.NewGenerator(o.source, cfg.demandOptions())
	if err != nil {
		return nil, err
	}

	clock := services.NewClock(cfg.InitialDay)
	recorder, err := events.NewRecorder(ctx, stores.Events, stores.Tx, clock, o.runID)
	if err != nil {
		return nil, err
	}

	ledger := inventory.NewLedger(stores.Stock, stores.Products, recorder)
	resolver := bom.NewResolver(stores.Products, stores.BOM)
	orders := manufacturing.NewManager(stores.ManufacturingOrders, stores.Products, resolver, ledger, recorder, clock)
	purchases := purchasing.NewManager(stores.PurchaseOrders, stores.Suppliers, stores.Products, ledger, recorder, clock)

	log := o.log.Named("simulation")
	s := &Simulation{
		cfg:        cfg,
		stores:     stores,
		clock:      clock,
		recorder:   recorder,
		ledger:     ledger,
		orders:     orders,
		purchasing: purchases,
		log:        log,
	}
	s.scheduler = newScheduler(cfg, clock, generator, stores.Products, orders, purchases, ledger, recorder, log, o.observers)

	log.Info().
		Str("run_id", recorder.RunID().String()).
		Str("start", entities.FormatDate(cfg.InitialDay)).
		Uint64("seed", cfg.Seed).
		Msg("simulation ready")
	return s, nil
}

// Config returns the settings the simulation was built with
func (s *Simulation) Config() Config {
	return s.cfg
}

// RunID identifies this run's events
func (s *Simulation) RunID() uuid.UUID {
	return s.recorder.RunID()
}

// LoadDataset stores master data and books opening stock through the ledger
func (s *Simulation) LoadDataset(ctx context.Context, d seed.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return seed.Load(ctx, s.stores, d, s.ledger)
}

// AdvanceDay runs one tick
func (s *Simulation) AdvanceDay(ctx context.Context) (*dto.DayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scheduler.AdvanceDay(ctx)
}

// CurrentDate returns the simulated day
func (s *Simulation) CurrentDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clock.Today()
}

// RemainingCapacity is how many more orders may be released today
func (s *Simulation) RemainingCapacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scheduler.RemainingCapacity()
}

func (s *Simulation) CreateManufacturingOrder(ctx context.Context, productID entities.ProductID, qty entities.Quantity) (*entities.ManufacturingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.orders.Create(ctx, productID, qty)
}

// ReleaseManufacturingOrder releases one order now. It counts against
// today's capacity, so the next tick releases fewer from the queue.
// A release on day D is stamped D. The tick that leaves D only completes
// orders released before D, so the order completes on the tick that
// leaves D+1, the same day as orders the queue released on D.
func (s *Simulation) ReleaseManufacturingOrder(ctx context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orders.Release(ctx, id)
	if err != nil {
		return nil, err
	}
	s.scheduler.NoteRelease()
	return order, nil
}

func (s *Simulation) CancelManufacturingOrder(ctx context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.orders.Cancel(ctx, id)
}

func (s *Simulation) ManufacturingOrder(ctx context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.orders.Get(ctx, id)
}

// ManufacturingOrders lists orders, all of them when status is nil
func (s *Simulation) ManufacturingOrders(ctx context.Context, status *entities.ManufacturingStatus) ([]*entities.ManufacturingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.orders.List(ctx, status)
}

// PendingOrdersWithMaterials is the material availability view of the release queue
func (s *Simulation) PendingOrdersWithMaterials(ctx context.Context) ([]dto.OrderMaterials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.orders.PendingWithMaterials(ctx)
}

func (s *Simulation) CreatePurchaseOrder(ctx context.Context, supplierID entities.SupplierID, productID entities.ProductID, qty entities.Quantity) (*entities.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.purchasing.Create(ctx, supplierID, productID, qty)
}

func (s *Simulation) CancelPurchaseOrder(ctx context.Context, id entities.PurchaseOrderID) (*entities.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.purchasing.Cancel(ctx, id)
}

func (s *Simulation) PurchaseOrder(ctx context.Context, id entities.PurchaseOrderID) (*entities.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.purchasing.Get(ctx, id)
}

// PurchaseOrders lists purchase orders, all of them when status is nil
func (s *Simulation) PurchaseOrders(ctx context.Context, status *entities.PurchaseStatus) ([]*entities.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.purchasing.List(ctx, status)
}

// SuppliersFor lists a product's suppliers with the arrival date of an order placed today
func (s *Simulation) SuppliersFor(ctx context.Context, productID entities.ProductID) ([]dto.SupplierOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.purchasing.SuppliersFor(ctx, productID)
}

func (s *Simulation) Products(ctx context.Context) ([]*entities.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stores.Products.GetAll(ctx)
}

func (s *Simulation) Product(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stores.Products.GetByID(ctx, id)
}

// Inventory lists every product with its on-hand quantity, zero when never stocked
func (s *Simulation) Inventory(ctx context.Context) ([]dto.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.stores.Products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	items := make([]dto.InventoryItem, 0, len(products))
	for _, p := range products {
		qty, err := s.ledger.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, dto.InventoryItem{ProductID: p.ID, Name: p.Name, Kind: p.Kind, Quantity: qty})
	}
	return items, nil
}

// Stock returns one product's level. Unknown products are not found.
func (s *Simulation) Stock(ctx context.Context, id entities.ProductID) (dto.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.stores.Products.GetByID(ctx, id)
	if err != nil {
		return dto.InventoryItem{}, err
	}
	qty, err := s.ledger.Get(ctx, id)
	if err != nil {
		return dto.InventoryItem{}, err
	}
	return dto.InventoryItem{ProductID: p.ID, Name: p.Name, Kind: p.Kind, Quantity: qty}, nil
}

// Events queries the event log
func (s *Simulation) Events(ctx context.Context, filter entities.EventFilter) ([]entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recorder.Query(ctx, filter)
}
