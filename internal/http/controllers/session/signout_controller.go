package session

import (
	"net/http"

	dto "github.com/poad/poollink/internal/http/dto/session"
	httperrors "github.com/poad/poollink/internal/http/errors"
	svc "github.com/poad/poollink/internal/http/services/session"
	"github.com/poad/poollink/internal/observability/logger"
)

// SignOutController handles POST /v2/session/signout.
type SignOutController struct {
	service svc.SignOutService
	cookie  dto.CookieConfig
}

// NewSignOutController creates a new sign-out controller.
func NewSignOutController(service svc.SignOutService, cookie dto.CookieConfig) *SignOutController {
	return &SignOutController{service: service, cookie: cookie}
}

// SignOut handles the global sign-out request. Responde 204 sin cookies en
// todos los casos: con o sin sesión, con o sin directorio disponible. El
// cliente queda forzado a re-autenticarse.
// POST /v2/session/signout
func (c *SignOutController) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromWithFields(ctx, logger.Layer("controller"), logger.Op("SignOutController.SignOut"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	if ck, err := r.Cookie(c.cookie.Name); err == nil {
		if token, ok := dto.DecodeToken(ck.Value); ok {
			c.service.SignOut(ctx, token.RefreshToken)
		}
	}

	w.WriteHeader(http.StatusNoContent)
	log.Debug("signed out")
}
