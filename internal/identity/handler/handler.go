package handler

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campuspass/internal/identity/lockout"
	"campuspass/internal/identity/models"
	"campuspass/internal/identity/service"
	"campuspass/internal/transport/http/shared"
	dErrors "campuspass/pkg/domain-errors"
)

// Handler exposes signup and login.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
	guard  *lockout.Guard
}

// New builds the handler. guard may be nil to disable login throttling.
func New(svc *service.Service, logger *slog.Logger, guard *lockout.Guard) *Handler {
	return &Handler{svc: svc, logger: logger, guard: guard}
}

// Register mounts the auth routes. Both endpoints are public.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/signup", h.handleSignup)
	r.Post("/api/auth/login", h.handleLogin)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := shared.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) && !dErrors.HasCode(err, dErrors.CodeBadRequest) {
			h.logger.ErrorContext(r.Context(), "signup failed", "error", err)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := shared.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	ip := clientIP(r)
	if retryAfter, ok := h.guard.Allow(req.Email, ip); !ok {
		h.logger.WarnContext(r.Context(), "login locked out", "retry_after", retryAfter)
		shared.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many failed login attempts, try again later"))
		return
	}

	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.guard.RecordFailure(req.Email, ip)
		}
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		}
		shared.WriteError(w, err)
		return
	}

	h.guard.Clear(req.Email, ip)
	shared.WriteJSON(w, http.StatusOK, resp)
}

// clientIP trusts RemoteAddr, which the RealIP middleware has already
// rewritten from forwarding headers when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
