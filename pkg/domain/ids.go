// Package domain holds the typed identifiers shared across modules. Distinct
// UUID wrapper types keep event, user, and registration IDs from being mixed
// up at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "campuspass/pkg/domain-errors"
)

type (
	// EventID identifies an event.
	EventID uuid.UUID
	// UserID identifies a user in any role.
	UserID uuid.UUID
	// RegistrationID identifies a single registration record.
	RegistrationID uuid.UUID
)

func (id EventID) String() string        { return uuid.UUID(id).String() }
func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }

func (id EventID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsZero() bool         { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// The wrapper types implement encoding.TextMarshaler so JSON carries the
// canonical string form rather than raw UUID bytes.

func (id EventID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id RegistrationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *EventID) UnmarshalText(text []byte) error {
	parsed, err := ParseEventID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RegistrationID) UnmarshalText(text []byte) error {
	parsed, err := ParseRegistrationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewEventID generates a fresh event identifier.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewUserID generates a fresh user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewRegistrationID generates a fresh registration identifier.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// ParseEventID parses and validates an event ID from its string form.
// Rejects empty, malformed, and nil UUIDs.
func ParseEventID(s string) (EventID, error) {
	u, err := parse(s, "event id")
	return EventID(u), err
}

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parse(s, "user id")
	return UserID(u), err
}

// ParseRegistrationID parses and validates a registration ID from its string form.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parse(s, "registration id")
	return RegistrationID(u), err
}

func parse(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", what)
	}
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is not a valid identifier", what)
	}
	return u, nil
}
