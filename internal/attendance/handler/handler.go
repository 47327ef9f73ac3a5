package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campuspass/internal/attendance/models"
	"campuspass/internal/attendance/service"
	identity "campuspass/internal/identity/models"
	"campuspass/internal/platform/middleware"
	"campuspass/internal/transport/http/shared"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
)

// Handler exposes the attendance check-in endpoints.
type Handler struct {
	svc       *service.Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func New(svc *service.Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{svc: svc, logger: logger, validator: validator}
}

// Register mounts the attendance routes. Both require a staff role; the
// service additionally checks that the caller manages the specific event.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(h.logger,
			string(identity.RoleOrganizer), string(identity.RoleVolunteer), string(identity.RoleAdmin)))
		r.Post("/api/attendance/mark", h.handleMark)
		r.Get("/api/attendance/event/{eventID}", h.handleSummary)
	})
}

func callerFrom(r *http.Request) (service.Caller, error) {
	userID, err := id.ParseUserID(middleware.GetUserID(r.Context()))
	if err != nil {
		return service.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity missing")
	}
	return service.Caller{
		UserID: userID,
		Role:   identity.Role(middleware.GetRole(r.Context())),
	}, nil
}

func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.MarkRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := shared.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.svc.Mark(r.Context(), caller, req.CredentialKey)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "mark attendance failed", "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	summary, err := h.svc.Summary(r.Context(), caller, eventID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "attendance summary failed", "event_id", eventID, "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}
