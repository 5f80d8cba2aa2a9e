package entities

import (
	"time"

	"github.com/google/uuid"
)

// EventID is the position of an event in the log
type EventID int64

// EventType names a state transition recorded in the event log
type EventType string

const (
	EventOrderCreated      EventType = "order_created"
	EventOrderReleased     EventType = "order_released"
	EventOrderCompleted    EventType = "order_completed"
	EventOrderCancelled    EventType = "order_cancelled"
	EventPurchaseCreated   EventType = "purchase_created"
	EventPurchaseReceived  EventType = "purchase_received"
	EventPurchaseCancelled EventType = "purchase_cancelled"
	EventStockChanged      EventType = "stock_changed"
	EventDayAdvanced       EventType = "day_advanced"
)

// EventTypes lists every recognized event type
var EventTypes = []EventType{
	EventOrderCreated,
	EventOrderReleased,
	EventOrderCompleted,
	EventOrderCancelled,
	EventPurchaseCreated,
	EventPurchaseReceived,
	EventPurchaseCancelled,
	EventStockChanged,
	EventDayAdvanced,
}

// ParseEventType validates a textual event type
func ParseEventType(s string) (EventType, error) {
	for _, t := range EventTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", NewValidationError("type", "unknown event type %q", s)
}

// Event is an immutable entry of the append-only log. Timestamp is the
// simulated day on which the transition happened.
type Event struct {
	ID        EventID   `json:"id"`
	RunID     uuid.UUID `json:"run_id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Details   any       `json:"details"`
}

// EventFilter narrows an event query. Zero fields are ignored.
type EventFilter struct {
	Type  EventType
	Range DateRange
}

// Matches reports whether e satisfies the filter
func (f EventFilter) Matches(e Event) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	return f.Range.Contains(e.Timestamp)
}
