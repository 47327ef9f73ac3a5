package store

import (
	"context"
	"sort"
	"sync"
	"time"

	eventmodels "campuspass/internal/event/models"
	"campuspass/internal/registration/models"
	id "campuspass/pkg/domain"
	"campuspass/pkg/platform/sentinel"
)

// EventReader resolves the event a registration targets. The in-memory store
// needs it to enforce the capacity ceiling inside its own lock, the same way
// the postgres store reads capacity inside its transaction.
type EventReader interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
}

type pairKey struct {
	event       id.EventID
	participant id.UserID
}

// InMemory keeps registrations in maps. Create holds the store lock across
// the duplicate check, the capacity check, and the insert, mirroring the
// atomicity the postgres store gets from its transaction.
type InMemory struct {
	mu           sync.RWMutex
	byID         map[id.RegistrationID]*models.Registration
	byPair       map[pairKey]id.RegistrationID
	byCredential map[string]id.RegistrationID
	events       EventReader
}

func NewInMemory(events EventReader) *InMemory {
	return &InMemory{
		byID:         make(map[id.RegistrationID]*models.Registration),
		byPair:       make(map[pairKey]id.RegistrationID),
		byCredential: make(map[string]id.RegistrationID),
		events:       events,
	}
}

// Create inserts a registration, enforcing both ledger invariants:
// (event, participant) uniqueness and the event's capacity ceiling.
func (s *InMemory) Create(ctx context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.events.FindByID(ctx, reg.EventID)
	if err != nil {
		return err
	}

	key := pairKey{event: reg.EventID, participant: reg.ParticipantID}
	if _, exists := s.byPair[key]; exists {
		return sentinel.ErrConflict
	}

	count := 0
	for _, existing := range s.byID {
		if existing.EventID == reg.EventID {
			count++
		}
	}
	if count >= event.Capacity {
		return sentinel.ErrCapacityExceeded
	}

	cp := *reg
	s.byID[reg.ID] = &cp
	s.byPair[key] = reg.ID
	s.byCredential[reg.CredentialKey] = reg.ID
	return nil
}

func (s *InMemory) FindByEventAndParticipant(_ context.Context, eventID id.EventID, participantID id.UserID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	regID, ok := s.byPair[pairKey{event: eventID, participant: participantID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[regID]
	return &cp, nil
}

func (s *InMemory) FindByCredential(_ context.Context, credentialKey string) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	regID, ok := s.byCredential[credentialKey]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[regID]
	return &cp, nil
}

// ListByParticipant returns the participant's registrations, newest first.
func (s *InMemory) ListByParticipant(_ context.Context, participantID id.UserID) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Registration
	for _, reg := range s.byID {
		if reg.ParticipantID == participantID {
			cp := *reg
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListByEvent returns the event's registrations, newest first.
func (s *InMemory) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Registration
	for _, reg := range s.byID {
		if reg.EventID == eventID {
			cp := *reg
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) CountByEvent(_ context.Context, eventID id.EventID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, reg := range s.byID {
		if reg.EventID == eventID {
			count++
		}
	}
	return count, nil
}

// MarkAttended flips the attended flag exactly once. Repeat calls return the
// registration unchanged, preserving the original AttendedAt.
func (s *InMemory) MarkAttended(_ context.Context, regID id.RegistrationID, at time.Time) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byID[regID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !reg.Attended {
		reg.Attended = true
		attendedAt := at
		reg.AttendedAt = &attendedAt
	}
	cp := *reg
	return &cp, nil
}
