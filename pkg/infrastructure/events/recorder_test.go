package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

type fixedDate time.Time

func (d fixedDate) Today() time.Time { return time.Time(d) }

var jan1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// storeTx rolls the event store back when fn fails
type storeTx struct{ store *InMemoryEventStore }

func (s storeTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	restore := s.store.Checkpoint()
	if err := fn(ctx); err != nil {
		restore()
		return err
	}
	return nil
}

func newTestRecorder(t *testing.T) (*Recorder, *InMemoryEventStore) {
	t.Helper()
	store := NewInMemoryEventStore()
	rec, err := NewRecorder(context.Background(), store, storeTx{store}, fixedDate(jan1), uuid.Nil)
	require.NoError(t, err)
	return rec, store
}

func TestRecorder_AssignsIncreasingIDs(t *testing.T) {
	rec, store := newTestRecorder(t)
	ctx := context.Background()

	first, err := rec.Append(ctx, NewStockChangedEvent(3, 0, 30, "initial stock"))
	require.NoError(t, err)
	second, err := rec.Append(ctx, NewStockChangedEvent(4, 0, 25, "initial stock"))
	require.NoError(t, err)

	assert.Equal(t, entities.EventID(1), first.ID)
	assert.Equal(t, entities.EventID(2), second.ID)
	assert.Equal(t, jan1, first.Timestamp)
	assert.NotEqual(t, uuid.Nil, first.RunID)
	assert.Equal(t, rec.RunID(), second.RunID)

	last, err := store.LastID(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.EventID(2), last)
}

func TestRecorder_KeepsExplicitTimestamp(t *testing.T) {
	rec, _ := newTestRecorder(t)

	e, err := rec.Append(context.Background(), NewDayAdvancedEvent(jan1, jan1.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.Equal(t, jan1.AddDate(0, 0, 1), e.Timestamp)
	assert.Equal(t, DayAdvanced{PreviousDate: "2025-01-01", NewDate: "2025-01-02"}, e.Details)
}

func TestRecorder_ContinuesAfterExistingLog(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryEventStore()
	_, err := store.Add(ctx, entities.Event{ID: 41, Type: entities.EventDayAdvanced, Timestamp: jan1})
	require.NoError(t, err)

	rec, err := NewRecorder(ctx, store, nil, fixedDate(jan1), uuid.New())
	require.NoError(t, err)

	e, err := rec.Append(ctx, NewStockChangedEvent(3, 1, 2, "receipt"))
	require.NoError(t, err)
	assert.Equal(t, entities.EventID(42), e.ID)
}

func TestRecorder_Capture(t *testing.T) {
	rec, _ := newTestRecorder(t)
	ctx := context.Background()

	_, err := rec.Append(ctx, NewStockChangedEvent(3, 0, 30, "initial stock"))
	require.NoError(t, err)

	captured, err := rec.Capture(func() error {
		if _, err := rec.Append(ctx, NewStockChangedEvent(3, 30, 29, "consumed")); err != nil {
			return err
		}
		_, err := rec.Append(ctx, NewDayAdvancedEvent(jan1, jan1.AddDate(0, 0, 1)))
		return err
	})
	require.NoError(t, err)

	require.Len(t, captured, 2)
	assert.Equal(t, entities.EventID(2), captured[0].ID)
	assert.Equal(t, entities.EventDayAdvanced, captured[1].Type)
}

func TestRecorder_CaptureReturnsFnError(t *testing.T) {
	rec, _ := newTestRecorder(t)
	boom := errors.New("boom")

	captured, err := rec.Capture(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, captured)
}

func TestRecorder_AtomicRollsBackOnError(t *testing.T) {
	rec, store := newTestRecorder(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := rec.Append(ctx, NewStockChangedEvent(3, 0, 30, "initial stock"))
	require.NoError(t, err)

	captured, err := rec.Capture(func() error {
		return rec.Atomic(ctx, func(ctx context.Context) error {
			if _, err := rec.Append(ctx, NewStockChangedEvent(3, 30, 20, "consumed")); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, captured, "rolled back events are not captured")

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	changes, err := store.GetByType(ctx, entities.EventStockChanged)
	require.NoError(t, err)
	assert.Len(t, changes, 1)

	next, err := rec.Append(ctx, NewDayAdvancedEvent(jan1, jan1.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.Equal(t, entities.EventID(2), next.ID, "ids continue from the last kept event")
}

func TestRecorder_AtomicNestedJoinsOuter(t *testing.T) {
	rec, store := newTestRecorder(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := rec.Atomic(ctx, func(ctx context.Context) error {
		err := rec.Atomic(ctx, func(ctx context.Context) error {
			_, err := rec.Append(ctx, NewStockChangedEvent(3, 0, 5, "receipt"))
			return err
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	last, err := store.LastID(ctx)
	require.NoError(t, err)
	assert.Zero(t, last, "inner work is dropped with the outer unit")
}

func TestRecorder_Query(t *testing.T) {
	rec, _ := newTestRecorder(t)
	ctx := context.Background()

	_, err := rec.Append(ctx, NewStockChangedEvent(3, 0, 30, "initial stock"))
	require.NoError(t, err)
	_, err = rec.Append(ctx, NewDayAdvancedEvent(jan1, jan1.AddDate(0, 0, 1)))
	require.NoError(t, err)

	all, err := rec.Query(ctx, entities.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byType, err := rec.Query(ctx, entities.EventFilter{Type: entities.EventStockChanged})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, entities.EventID(1), byType[0].ID)

	day2 := jan1.AddDate(0, 0, 1)
	byDate, err := rec.Query(ctx, entities.EventFilter{Range: entities.DateRange{Start: day2, End: day2}})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, entities.EventDayAdvanced, byDate[0].Type)

	both, err := rec.Query(ctx, entities.EventFilter{Type: entities.EventStockChanged, Range: entities.DateRange{Start: day2}})
	require.NoError(t, err)
	assert.Empty(t, both)

	_, err = rec.Query(ctx, entities.EventFilter{Range: entities.DateRange{Start: day2, End: jan1}})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestInMemoryEventStore_RejectsStaleID(t *testing.T) {
	store := NewInMemoryEventStore()
	ctx := context.Background()

	_, err := store.Add(ctx, entities.Event{ID: 5, Type: entities.EventDayAdvanced})
	require.NoError(t, err)
	_, err = store.Add(ctx, entities.Event{ID: 5, Type: entities.EventDayAdvanced})
	assert.Error(t, err)

	auto, err := store.Add(ctx, entities.Event{Type: entities.EventDayAdvanced})
	require.NoError(t, err)
	assert.Equal(t, entities.EventID(6), auto.ID)
}

func TestDecodeDetails(t *testing.T) {
	po := &entities.PurchaseOrder{ID: 1, SupplierID: 6, ProductID: 8, Quantity: 10, EstimatedDeliveryDate: jan1}
	original := NewPurchaseReceivedEvent(po)

	raw, err := json.Marshal(original.Details)
	require.NoError(t, err)

	decoded, err := DecodeDetails(entities.EventPurchaseReceived, raw)
	require.NoError(t, err)
	assert.Equal(t, original.Details, decoded)

	_, err = DecodeDetails("mystery", raw)
	assert.Error(t, err)
}

func TestNewStockChangedEvent_Change(t *testing.T) {
	e := NewStockChangedEvent(8, 100, 98, "consumed by order 1")
	details := e.Details.(StockChanged)
	assert.Equal(t, entities.Quantity(-2), details.Change)
	assert.Equal(t, entities.EventStockChanged, e.Type)
}
