package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/poad/poollink/internal/http/middlewares"
)

// RegisterTriggerRoutes registra el webhook de eventos de ciclo de vida.
func RegisterTriggerRoutes(r chi.Router, deps Deps) {
	c := deps.TriggerController
	if c == nil {
		return
	}

	r.Method(http.MethodPost, "/v2/triggers/{source}",
		mw.Chain(http.HandlerFunc(c.Handle),
			mw.WithRecover(),
			mw.WithRequestID(),
			mw.WithLogging(deps.Logger, deps.Metrics),
		))
}
