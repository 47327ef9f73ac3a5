package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identity "campuspass/internal/identity/models"
	"campuspass/internal/platform/middleware"
	"campuspass/internal/registration/models"
	"campuspass/internal/registration/service"
	"campuspass/internal/transport/http/shared"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
)

// Handler exposes the registration ledger endpoints.
type Handler struct {
	svc       *service.Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func New(svc *service.Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{svc: svc, logger: logger, validator: validator}
}

// Register mounts the registration routes. The count endpoint is public so
// event pages can show remaining seats; everything else needs a caller.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/registrations/count/{eventID}", h.handleCount)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Post("/api/registrations", h.handleRegister)
		r.Get("/api/registrations/user", h.handleListMine)
		r.Get("/api/registrations/event/{eventID}", h.handleListByEvent)
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

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := shared.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(req.EventID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reg, err := h.svc.Register(r.Context(), eventID, caller.UserID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "register failed", "event_id", eventID, "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, reg)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	regs, err := h.svc.ListMine(r.Context(), caller.UserID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list registrations failed", "error", err)
		shared.WriteError(w, err)
		return
	}
	if regs == nil {
		regs = []*models.WithEvent{}
	}
	shared.WriteJSON(w, http.StatusOK, regs)
}

func (h *Handler) handleListByEvent(w http.ResponseWriter, r *http.Request) {
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

	regs, err := h.svc.ListByEvent(r.Context(), caller, eventID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "list event registrations failed", "event_id", eventID, "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	if regs == nil {
		regs = []*models.WithParticipant{}
	}
	shared.WriteJSON(w, http.StatusOK, regs)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	count, err := h.svc.Count(r.Context(), eventID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "count registrations failed", "event_id", eventID, "error", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, models.CountResponse{EventID: eventID, Count: count})
}
