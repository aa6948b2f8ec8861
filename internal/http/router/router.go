// Package router contains the route aggregator.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	healthctrl "github.com/poad/poollink/internal/http/controllers/health"
	sessionctrl "github.com/poad/poollink/internal/http/controllers/session"
	triggerctrl "github.com/poad/poollink/internal/http/controllers/trigger"
	httperrors "github.com/poad/poollink/internal/http/errors"
	"github.com/poad/poollink/internal/metrics"
	"github.com/poad/poollink/internal/rate"
)

// Deps contains all dependencies for the router.
type Deps struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	SessionControllers *sessionctrl.Controllers
	TriggerController  *triggerctrl.WebhookController
	HealthController   *healthctrl.HealthController

	// RateLimiter es opcional; nil desactiva el rate limiting.
	RateLimiter rate.Limiter
}

// New builds the service handler with all routes registered.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	RegisterSessionRoutes(r, deps)
	RegisterTriggerRoutes(r, deps)
	RegisterHealthRoutes(r, deps)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}
