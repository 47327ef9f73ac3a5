package models

import (
	"time"

	eventmodels "campuspass/internal/event/models"
	identitymodels "campuspass/internal/identity/models"
	id "campuspass/pkg/domain"
)

// Registration is a participant's claim to one seat at an event.
//
// Invariants:
//   - At most one Registration exists per (EventID, ParticipantID); the
//     store's unique constraint is the authoritative guard
//   - CredentialKey and CredentialQR are immutable once issued
//   - Attended transitions from false to true at most once; AttendedAt is set iff
//     Attended is true (first-write-wins)
//
// Registrations are never deleted by this module; cleanup is an
// administrative concern outside its scope.
type Registration struct {
	ID            id.RegistrationID `json:"id"`
	EventID       id.EventID        `json:"event_id"`
	ParticipantID id.UserID         `json:"participant_id"`
	CredentialKey string            `json:"credential_key"`
	CredentialQR  string            `json:"credential_qr"`
	CreatedAt     time.Time         `json:"created_at"`
	Attended      bool              `json:"attended"`
	AttendedAt    *time.Time        `json:"attended_at,omitempty"`
}

// WithEvent pairs a registration with a summary of its event, for
// participant-facing listings.
type WithEvent struct {
	Registration
	Event eventmodels.EventSummary `json:"event"`
}

// WithParticipant pairs a registration with a summary of its participant,
// for organizer-facing listings.
type WithParticipant struct {
	Registration
	Participant identitymodels.UserSummary `json:"participant"`
}

// RegisterRequest is the payload for registering for an event.
type RegisterRequest struct {
	EventID string `json:"event_id" validate:"required,uuid4"`
}

// CountResponse is the public registration-count payload.
type CountResponse struct {
	EventID id.EventID `json:"event_id"`
	Count   int        `json:"count"`
}
