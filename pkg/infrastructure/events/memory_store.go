package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// InMemoryEventStore is an append-only event sink held in process memory
type InMemoryEventStore struct {
	mutex     sync.RWMutex
	byType    map[entities.EventType][]int
	allEvents []entities.Event
	position  entities.EventID
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		byType:    make(map[entities.EventType][]int),
		allEvents: make([]entities.Event, 0),
	}
}

var _ repositories.EventRepository = (*InMemoryEventStore)(nil)

// Checkpoint remembers the log length; restore drops anything appended since
func (s *InMemoryEventStore) Checkpoint() func() {
	s.mutex.RLock()
	n := len(s.allEvents)
	position := s.position
	s.mutex.RUnlock()

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		for _, e := range s.allEvents[n:] {
			idx := s.byType[e.Type]
			s.byType[e.Type] = idx[:len(idx)-1]
		}
		s.allEvents = s.allEvents[:n]
		s.position = position
	}
}

// Add appends an event. A zero id takes the next position; an explicit id
// must be greater than every stored one.
func (s *InMemoryEventStore) Add(_ context.Context, event entities.Event) (entities.Event, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if event.ID == 0 {
		event.ID = s.position + 1
	}
	if event.ID <= s.position {
		return entities.Event{}, fmt.Errorf("event id %d is not after position %d", event.ID, s.position)
	}

	s.byType[event.Type] = append(s.byType[event.Type], len(s.allEvents))
	s.allEvents = append(s.allEvents, event)
	s.position = event.ID

	return event, nil
}

func (s *InMemoryEventStore) GetAll(_ context.Context) ([]entities.Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]entities.Event, len(s.allEvents))
	copy(out, s.allEvents)
	return out, nil
}

func (s *InMemoryEventStore) GetByType(_ context.Context, t entities.EventType) ([]entities.Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	indexes := s.byType[t]
	out := make([]entities.Event, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, s.allEvents[i])
	}
	return out, nil
}

func (s *InMemoryEventStore) GetByDateRange(ctx context.Context, r entities.DateRange) ([]entities.Event, error) {
	return s.Find(ctx, entities.EventFilter{Range: r})
}

func (s *InMemoryEventStore) Find(_ context.Context, filter entities.EventFilter) ([]entities.Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]entities.Event, 0)
	for _, e := range s.allEvents {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemoryEventStore) LastID(_ context.Context) (entities.EventID, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.position, nil
}
