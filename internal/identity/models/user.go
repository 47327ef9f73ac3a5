package models

import (
	"time"

	id "campuspass/pkg/domain"
)

// Role is the coarse capability a user holds platform-wide. Event-scoped
// authority (organizer-of-event, volunteer-of-event) is derived from the
// event record, not from the role alone.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleVolunteer   Role = "volunteer"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleParticipant, RoleOrganizer, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

// User is an account in any role.
type User struct {
	ID           id.UserID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the projection embedded in registration listings.
type UserSummary struct {
	ID    id.UserID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Summary returns the embeddable projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     Role   `json:"role" validate:"omitempty,oneof=participant organizer volunteer admin"`
}

// LoginRequest is the payload for credential exchange.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a signed access token and its subject.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
