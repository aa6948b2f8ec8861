package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/poad/poollink/internal/http/middlewares"
)

// RegisterHealthRoutes registra rutas de health check. Públicas, sin logging
// por request (son muy frecuentes).
func RegisterHealthRoutes(r chi.Router, deps Deps) {
	c := deps.HealthController
	if c == nil {
		return
	}

	chain := func(h http.HandlerFunc) http.Handler {
		return mw.Chain(h,
			mw.WithRecover(),
			mw.WithRequestID(),
		)
	}

	r.Method(http.MethodGet, "/healthz", chain(c.Healthz))
	r.Method(http.MethodGet, "/readyz", chain(c.Readyz))
}
