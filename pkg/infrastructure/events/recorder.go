package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// DateSource supplies the simulated day used to stamp events
type DateSource interface {
	Today() time.Time
}

// Recorder assigns ids and timestamps to events and appends them to a sink.
// Ids are strictly increasing within a run.
type Recorder struct {
	mu      sync.Mutex
	sink    repositories.EventRepository
	tx      repositories.TxRunner
	clock   DateSource
	runID   uuid.UUID
	lastID  entities.EventID
	capture *[]entities.Event
	tracer  trace.Tracer
}

// NewRecorder creates a recorder continuing after the sink's last event.
// tx scopes Atomic; with a nil tx only the recorder's own state rolls back.
func NewRecorder(ctx context.Context, sink repositories.EventRepository, tx repositories.TxRunner, clock DateSource, runID uuid.UUID) (*Recorder, error) {
	last, err := sink.LastID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read last event id: %w", err)
	}
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	return &Recorder{
		sink:   sink,
		tx:     tx,
		clock:  clock,
		runID:  runID,
		lastID: last,
		tracer: otel.Tracer("factorysim/events"),
	}, nil
}

// RunID identifies the simulation run the events belong to
func (r *Recorder) RunID() uuid.UUID {
	return r.runID
}

// Append stamps and stores an event, returning the stored copy
func (r *Recorder) Append(ctx context.Context, event entities.Event) (entities.Event, error) {
	ctx, span := r.tracer.Start(ctx, "recorder.append", trace.WithAttributes(
		attribute.String("event.type", string(event.Type)),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = r.lastID + 1
	event.RunID = r.runID
	if event.Timestamp.IsZero() {
		event.Timestamp = r.clock.Today()
	}
	event.Timestamp = entities.Day(event.Timestamp)

	stored, err := r.sink.Add(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return entities.Event{}, fmt.Errorf("append %s event: %w", event.Type, err)
	}
	if stored.ID <= r.lastID {
		return entities.Event{}, fmt.Errorf("sink returned id %d not after %d", stored.ID, r.lastID)
	}
	r.lastID = stored.ID
	span.SetAttributes(attribute.Int64("event.id", int64(stored.ID)))

	if r.capture != nil {
		*r.capture = append(*r.capture, stored)
	}
	return stored, nil
}

type atomicKey struct{}

// Atomic runs fn as one unit of work: the store writes and events it makes
// are kept together or dropped together. On failure the next event id and
// any open Capture are rewound. Nested calls join the outermost one.
func (r *Recorder) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(atomicKey{}) == r {
		return fn(ctx)
	}
	ctx = context.WithValue(ctx, atomicKey{}, r)

	r.mu.Lock()
	lastID := r.lastID
	capture := r.capture
	captured := 0
	if capture != nil {
		captured = len(*capture)
	}
	r.mu.Unlock()

	var err error
	if r.tx != nil {
		err = r.tx.Run(ctx, fn)
	} else {
		err = fn(ctx)
	}
	if err == nil {
		return nil
	}

	r.mu.Lock()
	r.lastID = lastID
	if capture != nil && r.capture == capture {
		*capture = (*capture)[:captured]
	}
	r.mu.Unlock()
	return err
}

// Capture runs fn and returns every event appended while it ran
func (r *Recorder) Capture(fn func() error) ([]entities.Event, error) {
	captured := make([]entities.Event, 0)

	r.mu.Lock()
	previous := r.capture
	r.capture = &captured
	r.mu.Unlock()

	err := fn()

	r.mu.Lock()
	r.capture = previous
	if previous != nil {
		*previous = append(*previous, captured...)
	}
	r.mu.Unlock()

	return captured, err
}

// Query returns stored events matching the filter
func (r *Recorder) Query(ctx context.Context, filter entities.EventFilter) ([]entities.Event, error) {
	if err := filter.Range.Validate(); err != nil {
		return nil, err
	}
	if filter.Type == "" && filter.Range.Start.IsZero() && filter.Range.End.IsZero() {
		return r.sink.GetAll(ctx)
	}
	if filter.Range.Start.IsZero() && filter.Range.End.IsZero() {
		return r.sink.GetByType(ctx, filter.Type)
	}
	if filter.Type == "" {
		return r.sink.GetByDateRange(ctx, filter.Range)
	}
	return r.sink.Find(ctx, filter)
}
