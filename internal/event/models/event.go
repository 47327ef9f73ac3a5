package models

import (
	"time"

	identity "campuspass/internal/identity/models"
	id "campuspass/pkg/domain"
)

// Event is a campus activity with a fixed seat ceiling.
//
// Invariants:
//   - Capacity ≥ 1; the registration ledger refuses events without a ceiling
//   - OrganizerID is immutable after creation
//   - VolunteerIDs holds no duplicates
type Event struct {
	ID           id.EventID  `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Date         time.Time   `json:"date"`
	Location     string      `json:"location"`
	Capacity     int         `json:"capacity"`
	OrganizerID  id.UserID   `json:"organizer_id"`
	VolunteerIDs []id.UserID `json:"volunteer_ids"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// EventSummary is the projection embedded in registration listings.
type EventSummary struct {
	ID       id.EventID `json:"id"`
	Title    string     `json:"title"`
	Date     time.Time  `json:"date"`
	Location string     `json:"location"`
}

// Summary returns the embeddable projection of the event.
func (e *Event) Summary() EventSummary {
	return EventSummary{ID: e.ID, Title: e.Title, Date: e.Date, Location: e.Location}
}

// IsOrganizer reports whether userID owns the event.
func (e *Event) IsOrganizer(userID id.UserID) bool {
	return e.OrganizerID == userID
}

// HasVolunteer reports whether userID is assigned to staff the event.
func (e *Event) HasVolunteer(userID id.UserID) bool {
	for _, v := range e.VolunteerIDs {
		if v == userID {
			return true
		}
	}
	return false
}

// ManageableBy is the single authorization predicate for event-scoped
// operations: marking attendance, listing registrations, and reading
// attendance summaries. A caller qualifies as the event's organizer, an
// assigned volunteer, or a platform admin.
func (e *Event) ManageableBy(userID id.UserID, role identity.Role) bool {
	if role == identity.RoleAdmin {
		return true
	}
	return e.IsOrganizer(userID) || e.HasVolunteer(userID)
}

// AddVolunteers appends the given users, skipping ones already assigned.
func (e *Event) AddVolunteers(userIDs []id.UserID) {
	for _, candidate := range userIDs {
		if candidate.IsZero() || e.HasVolunteer(candidate) {
			continue
		}
		e.VolunteerIDs = append(e.VolunteerIDs, candidate)
	}
}

// CreateEventRequest is the payload for creating an event.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"max=4000"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required,max=300"`
	Capacity    int       `json:"capacity" validate:"required,min=1,max=100000"`
}

// UpdateEventRequest carries optional replacements for event fields.
// Nil fields are left untouched.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location" validate:"omitempty,max=300"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=1,max=100000"`
}

// AddVolunteersRequest carries volunteer user IDs to assign to an event.
type AddVolunteersRequest struct {
	Volunteers []string `json:"volunteers" validate:"required,min=1,dive,uuid4"`
}
