// Package service implements event lifecycle operations. Ownership rules:
// only the organizer who created an event (or an admin) may change it.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"campuspass/internal/event/models"
	identity "campuspass/internal/identity/models"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/platform/sentinel"
)

// EventStore is the persistence contract the service depends on.
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, eventID id.EventID) error
}

// Caller is the resolved identity of the requesting user.
type Caller struct {
	UserID id.UserID
	Role   identity.Role
}

// Service orchestrates event CRUD and volunteer assignment.
type Service struct {
	events EventStore
}

func New(events EventStore) *Service {
	return &Service{events: events}
}

// Create validates and persists a new event owned by the caller.
func (s *Service) Create(ctx context.Context, caller Caller, req models.CreateEventRequest) (*models.Event, error) {
	now := time.Now().UTC()
	event := &models.Event{
		ID:          id.NewEventID(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        req.Date,
		Location:    strings.TrimSpace(req.Location),
		Capacity:    req.Capacity,
		OrganizerID: caller.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if event.Title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "event title is required")
	}
	if event.Capacity < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "capacity must be at least 1")
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
	}
	return event, nil
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapEventErr(err)
	}
	return event, nil
}

// List returns all events ordered by date.
func (s *Service) List(ctx context.Context) ([]*models.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}

// Update applies partial changes to an event the caller owns.
func (s *Service) Update(ctx context.Context, caller Caller, eventID id.EventID, req models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapEventErr(err)
	}
	if err := s.requireOwnership(event, caller); err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "capacity must be at least 1")
		}
		event.Capacity = *req.Capacity
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.events.Update(ctx, event); err != nil {
		return nil, wrapEventErr(err)
	}
	return event, nil
}

// Delete removes an event the caller owns.
func (s *Service) Delete(ctx context.Context, caller Caller, eventID id.EventID) error {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return wrapEventErr(err)
	}
	if err := s.requireOwnership(event, caller); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return wrapEventErr(err)
	}
	return nil
}

// AddVolunteers assigns volunteers to an event the caller owns.
func (s *Service) AddVolunteers(ctx context.Context, caller Caller, eventID id.EventID, volunteerIDs []id.UserID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapEventErr(err)
	}
	if err := s.requireOwnership(event, caller); err != nil {
		return nil, err
	}

	event.AddVolunteers(volunteerIDs)
	event.UpdatedAt = time.Now().UTC()

	if err := s.events.Update(ctx, event); err != nil {
		return nil, wrapEventErr(err)
	}
	return event, nil
}

// requireOwnership allows the owning organizer and admins; volunteers cannot
// modify events, only manage attendance.
func (s *Service) requireOwnership(event *models.Event, caller Caller) error {
	if caller.Role == identity.RoleAdmin || event.IsOrganizer(caller.UserID) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "not authorized to modify this event")
}

func wrapEventErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, "event still has registrations")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "event store failure")
}
