// Package service implements the registration ledger: capacity-bounded
// issuance of registrations and the reads built on top of them.
//
// The service's pre-checks (duplicate, capacity) are early exits for clean
// client errors. The store's Create is the authoritative guard: its unique
// constraint and in-transaction capacity check hold under concurrency, and
// constraint violations that slip past the pre-checks are translated back
// into the same domain errors.
package service

import (
	"context"
	"errors"
	"time"

	"campuspass/internal/credential"
	eventmodels "campuspass/internal/event/models"
	identitymodels "campuspass/internal/identity/models"
	regmetrics "campuspass/internal/registration/metrics"
	"campuspass/internal/registration/models"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/platform/sentinel"
)

// RegistrationStore is the persistence contract for the ledger.
type RegistrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByEventAndParticipant(ctx context.Context, eventID id.EventID, participantID id.UserID) (*models.Registration, error)
	FindByCredential(ctx context.Context, credentialKey string) (*models.Registration, error)
	ListByParticipant(ctx context.Context, participantID id.UserID) ([]*models.Registration, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Registration, error)
	CountByEvent(ctx context.Context, eventID id.EventID) (int, error)
	MarkAttended(ctx context.Context, regID id.RegistrationID, at time.Time) (*models.Registration, error)
}

// EventReader resolves events for capacity reads and authorization.
type EventReader interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
}

// UserReader resolves participant summaries for organizer-facing listings.
type UserReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*identitymodels.User, error)
}

// CountCache caches public registration counts. May be nil (disabled).
type CountCache interface {
	Get(ctx context.Context, eventID id.EventID) (int, bool)
	Set(ctx context.Context, eventID id.EventID, count int)
	Invalidate(ctx context.Context, eventID id.EventID)
}

// Caller is the resolved identity of the requesting user.
type Caller struct {
	UserID id.UserID
	Role   identitymodels.Role
}

// Service orchestrates the registration ledger.
type Service struct {
	regs    RegistrationStore
	events  EventReader
	users   UserReader
	encoder *credential.Encoder
	metrics *regmetrics.Metrics
	counts  CountCache
}

func New(regs RegistrationStore, events EventReader, users UserReader, encoder *credential.Encoder, metrics *regmetrics.Metrics, counts CountCache) *Service {
	return &Service{
		regs:    regs,
		events:  events,
		users:   users,
		encoder: encoder,
		metrics: metrics,
		counts:  counts,
	}
}

// Register creates a registration for the caller, in precondition order:
// event exists, not already registered, seats remain. The credential is
// issued before the insert; if rendering fails, nothing is persisted.
func (s *Service) Register(ctx context.Context, eventID id.EventID, participantID id.UserID) (*models.Registration, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveRegister(start)
		}
	}()

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up event")
	}

	if _, err := s.regs.FindByEventAndParticipant(ctx, eventID, participantID); err == nil {
		s.incDuplicateRejected()
		return nil, dErrors.New(dErrors.CodeConflict, "already registered for this event")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing registration")
	}

	count, err := s.regs.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count registrations")
	}
	if count >= event.Capacity {
		s.incCapacityRejected()
		return nil, dErrors.New(dErrors.CodeCapacityExceeded, "event is at full capacity")
	}

	now := time.Now().UTC()
	cred, err := s.encoder.Issue(eventID, participantID, now)
	if err != nil {
		return nil, err
	}

	reg := &models.Registration{
		ID:            id.NewRegistrationID(),
		EventID:       eventID,
		ParticipantID: participantID,
		CredentialKey: cred.Key,
		CredentialQR:  cred.DataURL(),
		CreatedAt:     now,
		Attended:      false,
	}

	if err := s.regs.Create(ctx, reg); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			// Raced past the pre-check; same outcome as the early exit.
			s.incDuplicateRejected()
			return nil, dErrors.New(dErrors.CodeConflict, "already registered for this event")
		case errors.Is(err, sentinel.ErrCapacityExceeded):
			s.incCapacityRejected()
			return nil, dErrors.New(dErrors.CodeCapacityExceeded, "event is at full capacity")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration")
		}
	}

	s.incCreated()
	if s.counts != nil {
		s.counts.Invalidate(ctx, eventID)
	}
	return reg, nil
}

// ListMine returns the caller's registrations paired with event summaries,
// newest first.
func (s *Service) ListMine(ctx context.Context, participantID id.UserID) ([]*models.WithEvent, error) {
	regs, err := s.regs.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}

	out := make([]*models.WithEvent, 0, len(regs))
	for _, reg := range regs {
		entry := &models.WithEvent{Registration: *reg}
		if event, err := s.events.FindByID(ctx, reg.EventID); err == nil {
			entry.Event = event.Summary()
		}
		out = append(out, entry)
	}
	return out, nil
}

// ListByEvent returns an event's registrations with participant summaries.
// Restricted to callers who manage the event.
func (s *Service) ListByEvent(ctx context.Context, caller Caller, eventID id.EventID) ([]*models.WithParticipant, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up event")
	}
	if !event.ManageableBy(caller.UserID, caller.Role) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not authorized to view registrations for this event")
	}

	regs, err := s.regs.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}

	out := make([]*models.WithParticipant, 0, len(regs))
	for _, reg := range regs {
		entry := &models.WithParticipant{Registration: *reg}
		if user, err := s.users.FindByID(ctx, reg.ParticipantID); err == nil {
			entry.Participant = user.Summary()
		}
		out = append(out, entry)
	}
	return out, nil
}

// Count returns the number of registrations for an event. Public: event
// pages poll it to show remaining seats, hence the cache in front.
func (s *Service) Count(ctx context.Context, eventID id.EventID) (int, error) {
	if s.counts != nil {
		if count, ok := s.counts.Get(ctx, eventID); ok {
			return count, nil
		}
	}

	count, err := s.regs.CountByEvent(ctx, eventID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count registrations")
	}
	if s.counts != nil {
		s.counts.Set(ctx, eventID, count)
	}
	return count, nil
}

func (s *Service) incCreated() {
	if s.metrics != nil {
		s.metrics.Created.Inc()
	}
}

func (s *Service) incDuplicateRejected() {
	if s.metrics != nil {
		s.metrics.DuplicateRejected.Inc()
	}
}

func (s *Service) incCapacityRejected() {
	if s.metrics != nil {
		s.metrics.CapacityRejected.Inc()
	}
}
