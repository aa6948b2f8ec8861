package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/poad/poollink/internal/http/middlewares"
)

// RegisterSessionRoutes registra las rutas de session.
func RegisterSessionRoutes(r chi.Router, deps Deps) {
	c := deps.SessionControllers
	if c == nil {
		return
	}

	r.Method(http.MethodPost, "/v2/session",
		sessionHandler(deps, http.HandlerFunc(c.Exchange.Exchange)))
	r.Method(http.MethodPost, "/v2/session/signout",
		sessionHandler(deps, http.HandlerFunc(c.SignOut.SignOut)))
}

// sessionHandler crea el middleware chain para endpoints de session.
func sessionHandler(deps Deps, handler http.Handler) http.Handler {
	chain := []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithNoStore(),
	}

	// Rate limiting por IP si está configurado
	if deps.RateLimiter != nil {
		chain = append(chain, mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: deps.RateLimiter,
			KeyFunc: mw.IPPathRateKey,
		}))
	}

	// Logging al final
	chain = append(chain, mw.WithLogging(deps.Logger, deps.Metrics))

	return mw.Chain(handler, chain...)
}
