// Package service implements attendance check-in against issued credentials.
//
// Check-in resolves the scanned key through the registration ledger rather
// than decoding it; a credential that resolves to nothing is rejected without
// revealing whether it was ever valid. Marking is first-write-wins: the first
// scan records the timestamp, every later scan reports already_marked and
// leaves the record untouched.
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	attmetrics "campuspass/internal/attendance/metrics"
	"campuspass/internal/attendance/models"
	eventmodels "campuspass/internal/event/models"
	identitymodels "campuspass/internal/identity/models"
	regmodels "campuspass/internal/registration/models"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/platform/sentinel"
)

// RegistrationStore is the slice of the ledger check-in needs.
type RegistrationStore interface {
	FindByCredential(ctx context.Context, credentialKey string) (*regmodels.Registration, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*regmodels.Registration, error)
	MarkAttended(ctx context.Context, regID id.RegistrationID, at time.Time) (*regmodels.Registration, error)
}

// EventReader resolves events for authorization checks.
type EventReader interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
}

// UserReader resolves participant summaries for the attendance report.
type UserReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*identitymodels.User, error)
}

// Caller is the resolved identity of the requesting user.
type Caller struct {
	UserID id.UserID
	Role   identitymodels.Role
}

// Service orchestrates check-in and attendance reporting.
type Service struct {
	regs    RegistrationStore
	events  EventReader
	users   UserReader
	metrics *attmetrics.Metrics
	now     func() time.Time
}

func New(regs RegistrationStore, events EventReader, users UserReader, metrics *attmetrics.Metrics) *Service {
	return &Service{
		regs:    regs,
		events:  events,
		users:   users,
		metrics: metrics,
		now:     time.Now,
	}
}

// Mark checks a scanned credential in. Only callers who manage the
// credential's event may mark it: the event's organizer, one of its assigned
// volunteers, or an admin.
func (s *Service) Mark(ctx context.Context, caller Caller, credentialKey string) (*models.MarkResult, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveMark(start)
		}
	}()

	reg, err := s.regs.FindByCredential(ctx, credentialKey)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			if s.metrics != nil {
				s.metrics.InvalidCredential.Inc()
			}
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not recognized")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve credential")
	}

	event, err := s.events.FindByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up event")
	}
	if !event.ManageableBy(caller.UserID, caller.Role) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not authorized to check in attendees for this event")
	}

	alreadyMarked := reg.Attended

	marked, err := s.regs.MarkAttended(ctx, reg.ID, s.now().UTC())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark attendance")
	}

	if s.metrics != nil {
		if alreadyMarked {
			s.metrics.RepeatCheckIns.Inc()
		} else {
			s.metrics.CheckIns.Inc()
		}
	}

	return &models.MarkResult{Registration: *marked, AlreadyMarked: alreadyMarked}, nil
}

// Summary builds the attendance report for an event: counts plus the
// registrations partitioned into checked-in and absent. Restricted to
// callers who manage the event.
func (s *Service) Summary(ctx context.Context, caller Caller, eventID id.EventID) (*models.Summary, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up event")
	}
	if !event.ManageableBy(caller.UserID, caller.Role) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not authorized to view attendance for this event")
	}

	regs, err := s.regs.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}

	summary := &models.Summary{
		EventID:      eventID,
		Total:        len(regs),
		AttendedList: []*regmodels.WithParticipant{},
		AbsentList:   []*regmodels.WithParticipant{},
	}
	for _, reg := range regs {
		entry := &regmodels.WithParticipant{Registration: *reg}
		if user, err := s.users.FindByID(ctx, reg.ParticipantID); err == nil {
			entry.Participant = user.Summary()
		}
		if reg.Attended {
			summary.AttendedList = append(summary.AttendedList, entry)
		} else {
			summary.AbsentList = append(summary.AbsentList, entry)
		}
	}
	// Checked-in entries are reported most recent first.
	sort.SliceStable(summary.AttendedList, func(i, j int) bool {
		left, right := summary.AttendedList[i].AttendedAt, summary.AttendedList[j].AttendedAt
		if left == nil || right == nil {
			return right == nil && left != nil
		}
		return left.After(*right)
	})

	summary.Attended = len(summary.AttendedList)
	summary.NotAttended = len(summary.AbsentList)
	return summary, nil
}
