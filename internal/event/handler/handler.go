package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campuspass/internal/event/models"
	"campuspass/internal/event/service"
	identity "campuspass/internal/identity/models"
	"campuspass/internal/platform/middleware"
	"campuspass/internal/transport/http/shared"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
)

// Handler exposes the event CRUD endpoints.
type Handler struct {
	svc       *service.Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func New(svc *service.Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{svc: svc, logger: logger, validator: validator}
}

// Register mounts the event routes. Reads are public; writes require the
// organizer or admin role.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/events", h.handleList)
	r.Get("/api/events/{id}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireRole(h.logger, string(identity.RoleOrganizer), string(identity.RoleAdmin)))
		r.Post("/api/events", h.handleCreate)
		r.Put("/api/events/{id}", h.handleUpdate)
		r.Delete("/api/events/{id}", h.handleDelete)
		r.Post("/api/events/{id}/volunteers", h.handleAddVolunteers)
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

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list events failed", "error", err)
		shared.WriteError(w, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	shared.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	event, err := h.svc.Get(r.Context(), eventID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.CreateEventRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := shared.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	event, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "create event failed", "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, event)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.UpdateEventRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := shared.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	event, err := h.svc.Update(r.Context(), caller, eventID, req)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "update event failed", "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), caller, eventID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "delete event failed", "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "event removed"})
}

func (h *Handler) handleAddVolunteers(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.AddVolunteersRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := shared.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	volunteerIDs := make([]id.UserID, 0, len(req.Volunteers))
	for _, raw := range req.Volunteers {
		userID, err := id.ParseUserID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		volunteerIDs = append(volunteerIDs, userID)
	}

	event, err := h.svc.AddVolunteers(r.Context(), caller, eventID, volunteerIDs)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "add volunteers failed", "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, event)
}
