package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
)

var _ repositories.EventRepository = (*EventRepo)(nil)

// EventRepo is the append-only event sink of one run. Rows of other runs
// sharing the table are never read.
type EventRepo struct {
	q     Querier
	runID uuid.UUID
}

func NewEventRepository(q Querier, runID uuid.UUID) *EventRepo {
	return &EventRepo{q: q, runID: runID}
}

const eventColumns = `id, run_id, type, timestamp, details`

// Add appends an event. A zero id takes the next position.
func (r *EventRepo) Add(ctx context.Context, event entities.Event) (entities.Event, error) {
	if event.RunID != uuid.Nil && event.RunID != r.runID {
		return entities.Event{}, fmt.Errorf("event of run %s appended to run %s", event.RunID, r.runID)
	}
	details, err := json.Marshal(event.Details)
	if err != nil {
		return entities.Event{}, fmt.Errorf("encode %s details: %w", event.Type, err)
	}

	query := `
		INSERT INTO events (run_id, id, type, timestamp, details)
		SELECT $1, COALESCE(NULLIF($2::bigint, 0), COALESCE(MAX(id), 0) + 1), $3, $4, $5
		FROM events WHERE run_id = $1
		HAVING COALESCE(MAX(id), 0) < COALESCE(NULLIF($2::bigint, 0), COALESCE(MAX(id), 0) + 1)
		RETURNING id`
	var id entities.EventID
	err = conn(ctx, r.q).QueryRow(ctx, query, r.runID, event.ID, string(event.Type), entities.Day(event.Timestamp), details).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.Event{}, fmt.Errorf("event id %d is not after the last stored event", event.ID)
		}
		return entities.Event{}, fmt.Errorf("insert event: %w", err)
	}

	event.ID = id
	event.RunID = r.runID
	event.Timestamp = entities.Day(event.Timestamp)
	return event, nil
}

func (r *EventRepo) GetAll(ctx context.Context) ([]entities.Event, error) {
	return r.Find(ctx, entities.EventFilter{})
}

func (r *EventRepo) GetByType(ctx context.Context, t entities.EventType) ([]entities.Event, error) {
	return r.Find(ctx, entities.EventFilter{Type: t})
}

func (r *EventRepo) GetByDateRange(ctx context.Context, dr entities.DateRange) ([]entities.Event, error) {
	return r.Find(ctx, entities.EventFilter{Range: dr})
}

func (r *EventRepo) Find(ctx context.Context, filter entities.EventFilter) ([]entities.Event, error) {
	lo, hi := bounds(filter.Range)
	var typ *string
	if filter.Type != "" {
		s := string(filter.Type)
		typ = &s
	}

	rows, err := conn(ctx, r.q).Query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE run_id = $1
			AND ($2::text IS NULL OR type = $2)
			AND ($3::date IS NULL OR timestamp >= $3)
			AND ($4::date IS NULL OR timestamp <= $4)
		ORDER BY id`, r.runID, typ, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]entities.Event, 0)
	for rows.Next() {
		var (
			e       entities.Event
			typ     string
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.RunID, &typ, &e.Timestamp, &details); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = entities.EventType(typ)
		if e.Details, err = events.DecodeDetails(e.Type, details); err != nil {
			return nil, fmt.Errorf("event %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventRepo) LastID(ctx context.Context) (entities.EventID, error) {
	var id entities.EventID
	err := conn(ctx, r.q).QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM events WHERE run_id = $1`, r.runID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("last event id: %w", err)
	}
	return id, nil
}
