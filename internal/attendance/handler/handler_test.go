package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"campuspass/internal/attendance/service"
	"campuspass/internal/credential"
	eventmodels "campuspass/internal/event/models"
	eventstore "campuspass/internal/event/store"
	identitymodels "campuspass/internal/identity/models"
	identitystore "campuspass/internal/identity/store"
	jwttoken "campuspass/internal/jwt_token"
	regmodels "campuspass/internal/registration/models"
	regstore "campuspass/internal/registration/store"
	id "campuspass/pkg/domain"
)

type testEnv struct {
	router  http.Handler
	tokens  *jwttoken.JWTService
	events  *eventstore.InMemory
	users   *identitystore.InMemory
	regs    *regstore.InMemory
	encoder *credential.Encoder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	events := eventstore.NewInMemory()
	users := identitystore.NewInMemory()
	regs := regstore.NewInMemory(events)
	tokens := jwttoken.NewJWTService("test-key", "campuspass-test")
	svc := service.New(regs, events, users, nil)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	New(svc, logger, tokens).Register(r)
	return &testEnv{
		router:  r,
		tokens:  tokens,
		events:  events,
		users:   users,
		regs:    regs,
		encoder: credential.NewEncoder(),
	}
}

func (e *testEnv) addUser(t *testing.T, role identitymodels.Role) *identitymodels.User {
	t.Helper()
	user := &identitymodels.User{
		ID:        id.NewUserID(),
		Name:      "Test User",
		Email:     fmt.Sprintf("%s@campus.edu", id.NewUserID()),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func (e *testEnv) addEvent(t *testing.T, organizerID id.UserID) *eventmodels.Event {
	t.Helper()
	event := &eventmodels.Event{
		ID:          id.NewEventID(),
		Title:       "Open Day",
		Date:        time.Now().Add(24 * time.Hour).UTC(),
		Capacity:    50,
		OrganizerID: organizerID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := e.events.Create(context.Background(), event); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return event
}

func (e *testEnv) addRegistration(t *testing.T, eventID id.EventID) *regmodels.Registration {
	t.Helper()
	participant := e.addUser(t, identitymodels.RoleParticipant)
	now := time.Now().UTC()
	cred, err := e.encoder.Issue(eventID, participant.ID, now)
	if err != nil {
		t.Fatalf("failed to issue credential: %v", err)
	}
	reg := &regmodels.Registration{
		ID:            id.NewRegistrationID(),
		EventID:       eventID,
		ParticipantID: participant.ID,
		CredentialKey: cred.Key,
		CredentialQR:  cred.DataURL(),
		CreatedAt:     now,
	}
	if err := e.regs.Create(context.Background(), reg); err != nil {
		t.Fatalf("failed to seed registration: %v", err)
	}
	return reg
}

func (e *testEnv) tokenFor(t *testing.T, user *identitymodels.User) string {
	t.Helper()
	token, err := e.tokens.GenerateAccessToken(user.ID, string(user.Role), time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

func (e *testEnv) mark(t *testing.T, token, credentialKey string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"credential_key": credentialKey})
	req := httptest.NewRequest(http.MethodPost, "/api/attendance/mark", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestMarkRequiresStaffRole(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.addUser(t, identitymodels.RoleOrganizer)
	event := env.addEvent(t, organizer.ID)
	reg := env.addRegistration(t, event.ID)

	participant := env.addUser(t, identitymodels.RoleParticipant)
	rec := env.mark(t, env.tokenFor(t, participant), reg.CredentialKey)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for participant role, got %d", rec.Code)
	}
}

func TestMarkIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.addUser(t, identitymodels.RoleOrganizer)
	event := env.addEvent(t, organizer.ID)
	reg := env.addRegistration(t, event.ID)
	token := env.tokenFor(t, organizer)

	rec := env.mark(t, token, reg.CredentialKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on first mark, got %d: %s", rec.Code, rec.Body.String())
	}
	var first struct {
		AlreadyMarked bool `json:"already_marked"`
		Registration  struct {
			Attended   bool       `json:"attended"`
			AttendedAt *time.Time `json:"attended_at"`
		} `json:"registration"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatalf("failed to decode mark response: %v", err)
	}
	if first.AlreadyMarked || !first.Registration.Attended || first.Registration.AttendedAt == nil {
		t.Fatalf("expected fresh check-in, got %+v", first)
	}

	rec = env.mark(t, token, reg.CredentialKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat mark, got %d", rec.Code)
	}
	var second struct {
		AlreadyMarked bool `json:"already_marked"`
		Registration  struct {
			AttendedAt *time.Time `json:"attended_at"`
		} `json:"registration"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatalf("failed to decode repeat response: %v", err)
	}
	if !second.AlreadyMarked {
		t.Fatalf("expected already_marked on repeat scan")
	}
	if !second.Registration.AttendedAt.Equal(*first.Registration.AttendedAt) {
		t.Fatalf("expected original check-in timestamp to be preserved")
	}
}

func TestMarkUnknownCredential(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.addUser(t, identitymodels.RoleOrganizer)
	env.addEvent(t, organizer.ID)

	key := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	rec := env.mark(t, env.tokenFor(t, organizer), key)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown credential, got %d", rec.Code)
	}
}

func TestMarkRejectsMalformedCredential(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.addUser(t, identitymodels.RoleOrganizer)

	rec := env.mark(t, env.tokenFor(t, organizer), "not-a-credential")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed credential, got %d", rec.Code)
	}
}

func TestSummaryPartitionsAttendance(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.addUser(t, identitymodels.RoleOrganizer)
	event := env.addEvent(t, organizer.ID)
	token := env.tokenFor(t, organizer)

	marked := env.addRegistration(t, event.ID)
	env.addRegistration(t, event.ID)
	if rec := env.mark(t, token, marked.CredentialKey); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 marking attendance, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/attendance/event/"+event.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from summary, got %d", rec.Code)
	}

	var resp struct {
		Total        int `json:"total"`
		Attended     int `json:"attended"`
		NotAttended  int `json:"not_attended"`
		AttendedList []struct {
			Participant struct {
				Name string `json:"name"`
			} `json:"participant"`
		} `json:"attended_list"`
		AbsentList []json.RawMessage `json:"absent_list"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if resp.Total != 2 || resp.Attended != 1 || resp.NotAttended != 1 {
		t.Fatalf("expected 2/1/1 summary, got %d/%d/%d", resp.Total, resp.Attended, resp.NotAttended)
	}
	if len(resp.AttendedList) != 1 || len(resp.AbsentList) != 1 {
		t.Fatalf("expected one entry per partition")
	}
	if resp.AttendedList[0].Participant.Name == "" {
		t.Fatalf("expected participant summary in attended list")
	}
}

func TestSummaryForbiddenForUnrelatedStaff(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.addUser(t, identitymodels.RoleOrganizer)
	stranger := env.addUser(t, identitymodels.RoleVolunteer)
	event := env.addEvent(t, organizer.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/attendance/event/"+event.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, stranger))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unassigned volunteer, got %d", rec.Code)
	}
}
