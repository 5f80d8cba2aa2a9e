package simulation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/application/services/demand"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
	"github.com/vsinha/factorysim/pkg/logger"
)

// DayObserver is told about every completed tick, synchronously and in order
type DayObserver interface {
	DayAdvanced(result *dto.DayResult)
}

type demandSource interface {
	Generate(finished []*entities.Product) []demand.Request
}

type catalog interface {
	GetByKind(ctx context.Context, kind entities.ProductKind) ([]*entities.Product, error)
}

type orderQueue interface {
	Create(ctx context.Context, productID entities.ProductID, qty entities.Quantity) (*entities.ManufacturingOrder, error)
	ReleaseQueue(ctx context.Context, limit int) ([]*entities.ManufacturingOrder, []dto.Failure, error)
	CompleteReleasedBefore(ctx context.Context, day time.Time) ([]*entities.ManufacturingOrder, []dto.Failure, error)
}

type arrivals interface {
	ReceiveArrived(ctx context.Context, asOf time.Time) ([]*entities.PurchaseOrder, []dto.Failure, error)
}

type stockTotal interface {
	Total(ctx context.Context) (entities.Quantity, error)
}

type dayClock interface {
	Today() time.Time
	Tomorrow() time.Time
	Advance() time.Time
}

type capturer interface {
	Append(ctx context.Context, event entities.Event) (entities.Event, error)
	Capture(fn func() error) ([]entities.Event, error)
}

// Scheduler runs one simulated day at a time. It is not safe for concurrent
// use; Simulation serializes access.
type Scheduler struct {
	cfg       Config
	clock     dayClock
	demand    demandSource
	products  catalog
	orders    orderQueue
	purchases arrivals
	stock     stockTotal
	recorder  capturer
	observers []DayObserver
	log       *logger.Logger
	tracer    trace.Tracer

	releasedToday int
}

// NoteRelease counts a release made outside a tick against today's capacity
func (s *Scheduler) NoteRelease() {
	s.releasedToday++
}

// RemainingCapacity is how many more orders may be released today
func (s *Scheduler) RemainingCapacity() int {
	return max(s.cfg.ProductionCapacityPerDay-s.releasedToday, 0)
}

// AdvanceDay runs the fixed tick sequence: demand, release, receive,
// complete, advance the date, then record day_advanced. Per-item failures
// are collected in the result and never abort the tick.
func (s *Scheduler) AdvanceDay(ctx context.Context) (*dto.DayResult, error) {
	today := s.clock.Today()
	ctx, span := s.tracer.Start(ctx, "scheduler.advance_day", trace.WithAttributes(
		attribute.String("sim.date", entities.FormatDate(today)),
	))
	defer span.End()

	result := &dto.DayResult{PreviousDate: today}

	captured, err := s.recorder.Capture(func() error {
		s.step(ctx, "demand", result, func(ctx context.Context) []dto.Failure { return s.generateDemand(ctx, result) })
		s.step(ctx, "release", result, func(ctx context.Context) []dto.Failure { return s.releaseOrders(ctx, result) })
		s.step(ctx, "receive", result, func(ctx context.Context) []dto.Failure { return s.receivePurchases(ctx, result) })
		s.step(ctx, "complete", result, func(ctx context.Context) []dto.Failure { return s.completeOrders(ctx, today, result) })

		result.NewDate = s.clock.Advance()
		s.releasedToday = 0

		if _, err := s.recorder.Append(ctx, events.NewDayAdvancedEvent(today, result.NewDate)); err != nil {
			return fmt.Errorf("record day advance: %w", err)
		}
		return nil
	})
	result.Events = captured
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tick failed")
		return nil, err
	}

	s.checkWarehouse(ctx, result)

	span.SetAttributes(
		attribute.Int("sim.released", len(result.Released)),
		attribute.Int("sim.received", len(result.Received)),
		attribute.Int("sim.completed", len(result.Completed)),
		attribute.Int("sim.failures", len(result.Failures)),
	)
	s.log.Info().
		Str("date", entities.FormatDate(result.NewDate)).
		Int("created", len(result.Created)).
		Int("released", len(result.Released)).
		Int("received", len(result.Received)).
		Int("completed", len(result.Completed)).
		Int("failures", len(result.Failures)).
		Int("events", len(result.Events)).
		Msg("day advanced")

	for _, o := range s.observers {
		o.DayAdvanced(result)
	}
	return result, nil
}

func (s *Scheduler) step(ctx context.Context, name string, result *dto.DayResult, fn func(ctx context.Context) []dto.Failure) {
	ctx, span := s.tracer.Start(ctx, "scheduler."+name)
	defer span.End()

	failures := fn(ctx)
	for _, f := range failures {
		s.log.Warn().
			Str("step", string(f.Step)).
			Int64("order_id", f.OrderID).
			Int64("product_id", int64(f.ProductID)).
			Str("reason", f.Reason).
			Msg("tick item failed")
	}
	if len(failures) > 0 {
		span.SetAttributes(attribute.Int("sim.failures", len(failures)))
	}
	result.Failures = append(result.Failures, failures...)
}

func (s *Scheduler) generateDemand(ctx context.Context, result *dto.DayResult) []dto.Failure {
	finished, err := s.products.GetByKind(ctx, entities.FinishedGood)
	if err != nil {
		return []dto.Failure{dto.NewFailure(dto.StepDemand, 0, 0, fmt.Errorf("list finished products: %w", err))}
	}

	var failures []dto.Failure
	for _, req := range s.demand.Generate(finished) {
		order, err := s.orders.Create(ctx, req.ProductID, req.Quantity)
		if err != nil {
			failures = append(failures, dto.NewFailure(dto.StepDemand, 0, req.ProductID, err))
			continue
		}
		result.Created = append(result.Created, order.ID)
	}
	return failures
}

func (s *Scheduler) releaseOrders(ctx context.Context, result *dto.DayResult) []dto.Failure {
	released, failures, err := s.orders.ReleaseQueue(ctx, s.RemainingCapacity())
	if err != nil {
		return []dto.Failure{dto.NewFailure(dto.StepRelease, 0, 0, err)}
	}
	for _, o := range released {
		result.Released = append(result.Released, o.ID)
	}
	s.releasedToday += len(released)
	return failures
}

func (s *Scheduler) receivePurchases(ctx context.Context, result *dto.DayResult) []dto.Failure {
	received, failures, err := s.purchases.ReceiveArrived(ctx, s.clock.Tomorrow())
	if err != nil {
		return []dto.Failure{dto.NewFailure(dto.StepReceive, 0, 0, err)}
	}
	for _, o := range received {
		result.Received = append(result.Received, o.ID)
	}
	return failures
}

// completeOrders finishes what was released on earlier days; today's
// releases complete on the next tick
func (s *Scheduler) completeOrders(ctx context.Context, today time.Time, result *dto.DayResult) []dto.Failure {
	completed, failures, err := s.orders.CompleteReleasedBefore(ctx, today)
	if err != nil {
		return []dto.Failure{dto.NewFailure(dto.StepComplete, 0, 0, err)}
	}
	for _, o := range completed {
		result.Completed = append(result.Completed, o.ID)
	}
	return failures
}

// checkWarehouse compares total stock with the advisory capacity
func (s *Scheduler) checkWarehouse(ctx context.Context, result *dto.DayResult) {
	total, err := s.stock.Total(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to total stock")
		return
	}
	result.TotalStock = total
	if total > s.cfg.WarehouseCapacity {
		result.OverCapacity = true
		s.log.Warn().
			Int64("total_stock", int64(total)).
			Int64("warehouse_capacity", int64(s.cfg.WarehouseCapacity)).
			Msg("warehouse over capacity")
	}
}

func newScheduler(cfg Config, clock dayClock, src demandSource, products catalog, orders orderQueue,
	purchases arrivals, stock stockTotal, recorder capturer, log *logger.Logger, observers []DayObserver) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		clock:     clock,
		demand:    src,
		products:  products,
		orders:    orders,
		purchases: purchases,
		stock:     stock,
		recorder:  recorder,
		observers: observers,
		log:       log,
		tracer:    otel.Tracer("factorysim/scheduler"),
	}
}
