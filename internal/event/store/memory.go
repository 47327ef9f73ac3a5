package store

import (
	"context"
	"sort"
	"sync"

	"campuspass/internal/event/models"
	id "campuspass/pkg/domain"
	"campuspass/pkg/platform/sentinel"
)

// InMemory keeps events in a map, mirroring the postgres store's contract.
type InMemory struct {
	mu     sync.RWMutex
	events map[id.EventID]*models.Event
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.EventID]*models.Event)}
}

func (s *InMemory) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := clone(event)
	s.events[event.ID] = cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(event), nil
}

// List returns all events ordered by date ascending.
func (s *InMemory) List(_ context.Context) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Event, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, clone(event))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.events[event.ID] = clone(event)
	return nil
}

func (s *InMemory) Delete(_ context.Context, eventID id.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.events, eventID)
	return nil
}

func clone(event *models.Event) *models.Event {
	cp := *event
	cp.VolunteerIDs = append([]id.UserID(nil), event.VolunteerIDs...)
	return &cp
}
