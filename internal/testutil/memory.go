package testutil

import (
	"context"
	"strconv"
	"sync"

	"github.com/cimillas/events-api/internal/domain"
)

// MemoryEventRepository is an in-process EventRepository for tests that do not
// need a database. Identifiers are decimal sequence numbers; anything that does
// not parse as one is reported as domain.ErrInvalidID, like a real store would.
type MemoryEventRepository struct {
	mu     sync.Mutex
	nextID int
	order  []string
	events map[string]domain.Event

	// Err, when set, is returned by every operation.
	Err error
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{events: make(map[string]domain.Event)}
}

func (r *MemoryEventRepository) CreateEvent(_ context.Context, event domain.Event) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return domain.Event{}, r.Err
	}

	r.nextID++
	event.ID = strconv.Itoa(r.nextID)
	r.events[event.ID] = event
	r.order = append(r.order, event.ID)
	return event, nil
}

func (r *MemoryEventRepository) ListEvents(_ context.Context) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	events := make([]domain.Event, 0, len(r.order))
	for _, id := range r.order {
		events = append(events, r.events[id])
	}
	return events, nil
}

func (r *MemoryEventRepository) UpdateEvent(_ context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if _, err := strconv.Atoi(id); err != nil {
		return nil, domain.ErrInvalidID
	}

	event, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		event.Name = *patch.Name
	}
	if patch.Date != nil {
		event.Date = *patch.Date
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.CreatedAt != nil {
		event.CreatedAt = *patch.CreatedAt
	}
	r.events[id] = event
	return &event, nil
}

func (r *MemoryEventRepository) DeleteEvent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, err := strconv.Atoi(id); err != nil {
		return domain.ErrInvalidID
	}

	if _, ok := r.events[id]; !ok {
		return nil
	}
	delete(r.events, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
