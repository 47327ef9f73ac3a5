package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campuspass/internal/credential"
	eventmodels "campuspass/internal/event/models"
	eventstore "campuspass/internal/event/store"
	identitymodels "campuspass/internal/identity/models"
	identitystore "campuspass/internal/identity/store"
	regmodels "campuspass/internal/registration/models"
	regstore "campuspass/internal/registration/store"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
)

type AttendanceServiceSuite struct {
	suite.Suite
	svc     *Service
	regs    *regstore.InMemory
	events  *eventstore.InMemory
	users   *identitystore.InMemory
	encoder *credential.Encoder
	ctx     context.Context
}

func (s *AttendanceServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.events = eventstore.NewInMemory()
	s.users = identitystore.NewInMemory()
	s.regs = regstore.NewInMemory(s.events)
	s.encoder = credential.NewEncoder()
	s.svc = New(s.regs, s.events, s.users, nil)
}

func TestAttendanceServiceSuite(t *testing.T) {
	suite.Run(t, new(AttendanceServiceSuite))
}

func (s *AttendanceServiceSuite) createUser(role identitymodels.Role) *identitymodels.User {
	user := &identitymodels.User{
		ID:        id.NewUserID(),
		Name:      "Test User",
		Email:     fmt.Sprintf("%s@campus.edu", id.NewUserID()),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func (s *AttendanceServiceSuite) createEvent(organizerID id.UserID, volunteerIDs ...id.UserID) *eventmodels.Event {
	event := &eventmodels.Event{
		ID:           id.NewEventID(),
		Title:        "Guest Lecture",
		Date:         time.Now().Add(24 * time.Hour).UTC(),
		Capacity:     50,
		OrganizerID:  organizerID,
		VolunteerIDs: volunteerIDs,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	s.Require().NoError(s.events.Create(s.ctx, event))
	return event
}

// registerParticipant issues a real credential and writes the registration,
// the same shape the registration service produces.
func (s *AttendanceServiceSuite) registerParticipant(eventID id.EventID) *regmodels.Registration {
	participant := s.createUser(identitymodels.RoleParticipant)
	now := time.Now().UTC()
	cred, err := s.encoder.Issue(eventID, participant.ID, now)
	s.Require().NoError(err)

	reg := &regmodels.Registration{
		ID:            id.NewRegistrationID(),
		EventID:       eventID,
		ParticipantID: participant.ID,
		CredentialKey: cred.Key,
		CredentialQR:  cred.DataURL(),
		CreatedAt:     now,
	}
	s.Require().NoError(s.regs.Create(s.ctx, reg))
	return reg
}

func asCaller(user *identitymodels.User) Caller {
	return Caller{UserID: user.ID, Role: user.Role}
}

func (s *AttendanceServiceSuite) TestMark() {
	organizer := s.createUser(identitymodels.RoleOrganizer)
	volunteer := s.createUser(identitymodels.RoleVolunteer)
	event := s.createEvent(organizer.ID, volunteer.ID)

	s.Run("organizer checks a credential in", func() {
		reg := s.registerParticipant(event.ID)

		result, err := s.svc.Mark(s.ctx, asCaller(organizer), reg.CredentialKey)
		s.Require().NoError(err)
		s.False(result.AlreadyMarked)
		s.True(result.Registration.Attended)
		s.Require().NotNil(result.Registration.AttendedAt)
		s.Equal(reg.ParticipantID, result.Registration.ParticipantID)
	})

	s.Run("repeat scan reports already marked and keeps the first timestamp", func() {
		reg := s.registerParticipant(event.ID)

		first, err := s.svc.Mark(s.ctx, asCaller(organizer), reg.CredentialKey)
		s.Require().NoError(err)

		s.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { s.svc.now = time.Now }()

		second, err := s.svc.Mark(s.ctx, asCaller(volunteer), reg.CredentialKey)
		s.Require().NoError(err)
		s.True(second.AlreadyMarked)
		s.True(second.Registration.AttendedAt.Equal(*first.Registration.AttendedAt))
	})

	s.Run("assigned volunteer may check in", func() {
		reg := s.registerParticipant(event.ID)

		result, err := s.svc.Mark(s.ctx, asCaller(volunteer), reg.CredentialKey)
		s.Require().NoError(err)
		s.False(result.AlreadyMarked)
	})

	s.Run("admin may check in anywhere", func() {
		admin := s.createUser(identitymodels.RoleAdmin)
		reg := s.registerParticipant(event.ID)

		_, err := s.svc.Mark(s.ctx, asCaller(admin), reg.CredentialKey)
		s.Require().NoError(err)
	})

	s.Run("unrelated organizer is forbidden", func() {
		stranger := s.createUser(identitymodels.RoleOrganizer)
		reg := s.registerParticipant(event.ID)

		_, err := s.svc.Mark(s.ctx, asCaller(stranger), reg.CredentialKey)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		// The failed scan must not flip the flag.
		stored, err := s.regs.FindByCredential(s.ctx, reg.CredentialKey)
		s.Require().NoError(err)
		s.False(stored.Attended)
	})

	s.Run("participants cannot check themselves in", func() {
		reg := s.registerParticipant(event.ID)
		participant, err := s.users.FindByID(s.ctx, reg.ParticipantID)
		s.Require().NoError(err)

		_, err = s.svc.Mark(s.ctx, asCaller(participant), reg.CredentialKey)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown credential is rejected", func() {
		_, err := s.svc.Mark(s.ctx, asCaller(organizer), "0000000000000000000000000000000000000000000000000000000000000000")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AttendanceServiceSuite) TestSummary() {
	organizer := s.createUser(identitymodels.RoleOrganizer)
	event := s.createEvent(organizer.ID)

	regA := s.registerParticipant(event.ID)
	regB := s.registerParticipant(event.ID)
	s.registerParticipant(event.ID)

	_, err := s.svc.Mark(s.ctx, asCaller(organizer), regA.CredentialKey)
	s.Require().NoError(err)
	_, err = s.svc.Mark(s.ctx, asCaller(organizer), regB.CredentialKey)
	s.Require().NoError(err)

	s.Run("partitions registrations by attendance", func() {
		summary, err := s.svc.Summary(s.ctx, asCaller(organizer), event.ID)
		s.Require().NoError(err)
		s.Equal(3, summary.Total)
		s.Equal(2, summary.Attended)
		s.Equal(1, summary.NotAttended)
		s.Len(summary.AttendedList, 2)
		s.Len(summary.AbsentList, 1)
	})

	s.Run("includes participant summaries", func() {
		summary, err := s.svc.Summary(s.ctx, asCaller(organizer), event.ID)
		s.Require().NoError(err)
		s.Require().NotEmpty(summary.AttendedList)
		s.False(summary.AttendedList[0].Participant.ID.IsZero())
	})

	s.Run("orders checked-in entries by most recent scan", func() {
		ordered := s.createEvent(organizer.ID)
		first := s.registerParticipant(ordered.ID)
		second := s.registerParticipant(ordered.ID)

		base := time.Now().UTC()
		s.svc.now = func() time.Time { return base }
		defer func() { s.svc.now = time.Now }()

		// The later registration is scanned first; the report should still
		// lead with whichever check-in happened last.
		_, err := s.svc.Mark(s.ctx, asCaller(organizer), second.CredentialKey)
		s.Require().NoError(err)

		s.svc.now = func() time.Time { return base.Add(time.Minute) }
		_, err = s.svc.Mark(s.ctx, asCaller(organizer), first.CredentialKey)
		s.Require().NoError(err)

		summary, err := s.svc.Summary(s.ctx, asCaller(organizer), ordered.ID)
		s.Require().NoError(err)
		s.Require().Len(summary.AttendedList, 2)
		s.Equal(first.ID, summary.AttendedList[0].ID)
		s.Equal(second.ID, summary.AttendedList[1].ID)
	})

	s.Run("unrelated caller is forbidden", func() {
		stranger := s.createUser(identitymodels.RoleOrganizer)
		_, err := s.svc.Summary(s.ctx, asCaller(stranger), event.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown event yields not found", func() {
		_, err := s.svc.Summary(s.ctx, asCaller(organizer), id.NewEventID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty event reports zero everywhere", func() {
		empty := s.createEvent(organizer.ID)
		summary, err := s.svc.Summary(s.ctx, asCaller(organizer), empty.ID)
		s.Require().NoError(err)
		s.Equal(0, summary.Total)
		s.Empty(summary.AttendedList)
		s.Empty(summary.AbsentList)
	})
}
