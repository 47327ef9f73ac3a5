// Package httptransport assembles the HTTP surface: middleware stack, module
// routes, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendancehandler "campuspass/internal/attendance/handler"
	eventhandler "campuspass/internal/event/handler"
	identityhandler "campuspass/internal/identity/handler"
	platformmetrics "campuspass/internal/platform/metrics"
	"campuspass/internal/platform/middleware"
	registrationhandler "campuspass/internal/registration/handler"
	"campuspass/internal/transport/http/shared"
)

// Handlers collects the per-module route registrars.
type Handlers struct {
	Identity     *identityhandler.Handler
	Event        *eventhandler.Handler
	Registration *registrationhandler.Handler
	Attendance   *attendancehandler.Handler
}

// HealthChecker reports whether a backing resource is reachable.
type HealthChecker func(r *http.Request) error

// NewRouter builds the full route tree. The middleware order matters:
// request ID and real IP first so the logger and metrics see them, recovery
// last so panics in handlers still produce a response.
func NewRouter(logger *slog.Logger, metrics *platformmetrics.Metrics, handlers Handlers, health HealthChecker) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	if metrics != nil {
		r.Use(metrics.Middleware)
	}
	r.Use(chimiddleware.Recoverer)

	handlers.Identity.Register(r)
	handlers.Event.Register(r)
	handlers.Registration.Register(r)
	handlers.Attendance.Register(r)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req); err != nil {
				logger.ErrorContext(req.Context(), "health check failed", "error", err)
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
