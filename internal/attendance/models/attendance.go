package models

import (
	regmodels "campuspass/internal/registration/models"
	id "campuspass/pkg/domain"
)

// MarkRequest is the payload a scanning station submits after reading a
// credential. The key is opaque; it carries no event or participant data.
type MarkRequest struct {
	CredentialKey string `json:"credential_key" validate:"required,len=64,hexadecimal"`
}

// MarkResult reports the outcome of a check-in. AlreadyMarked is true when
// the credential had been scanned before; the registration then reflects the
// original check-in, not this scan.
type MarkResult struct {
	Registration  regmodels.Registration `json:"registration"`
	AlreadyMarked bool                   `json:"already_marked"`
}

// Summary is the organizer-facing attendance report for one event.
type Summary struct {
	EventID      id.EventID                   `json:"event_id"`
	Total        int                          `json:"total"`
	Attended     int                          `json:"attended"`
	NotAttended  int                          `json:"not_attended"`
	AttendedList []*regmodels.WithParticipant `json:"attended_list"`
	AbsentList   []*regmodels.WithParticipant `json:"absent_list"`
}
