package session

import (
	"encoding/json"
	"errors"
	"net/http"

	dto "github.com/poad/poollink/internal/http/dto/session"
	httperrors "github.com/poad/poollink/internal/http/errors"
	"github.com/poad/poollink/internal/http/helpers"
	svc "github.com/poad/poollink/internal/http/services/session"
	"github.com/poad/poollink/internal/observability/logger"
)

// ExchangeController handles POST /v2/session.
type ExchangeController struct {
	service svc.ExchangeService
	cookie  dto.CookieConfig
}

// NewExchangeController creates a new exchange controller.
func NewExchangeController(service svc.ExchangeService, cookie dto.CookieConfig) *ExchangeController {
	return &ExchangeController{service: service, cookie: cookie}
}

// Exchange handles the refresh-token exchange request.
// POST /v2/session
func (c *ExchangeController) Exchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromWithFields(ctx, logger.Layer("controller"), logger.Op("ExchangeController.Exchange"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	token, ok := c.sessionToken(r)
	if !ok {
		// Sin cookie o cookie malformada: no hay sesión. Nunca se consulta
		// el directorio ni se emiten cookies.
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	result, err := c.service.Exchange(ctx, token.RefreshToken)
	if err != nil {
		if !errors.Is(err, svc.ErrUnauthenticated) {
			log.Error("unexpected exchange error", logger.Err(err))
		}
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	// Rotada u original, la credencial de refresh vuelve solo por cookie,
	// nunca en el body.
	rotated := dto.Token{RefreshToken: result.RefreshToken}
	http.SetCookie(w, helpers.SessionCookie(c.cookie, rotated.Encode()))

	resp := dto.ExchangeResponse{
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
		Account:     projectAccount(result),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)

	log.Debug("session exchanged", logger.UserID(result.Account.UserID))
}

// sessionToken extrae y decodifica la cookie de sesión.
func (c *ExchangeController) sessionToken(r *http.Request) (dto.Token, bool) {
	ck, err := r.Cookie(c.cookie.Name)
	if err != nil {
		return dto.Token{}, false
	}
	return dto.DecodeToken(ck.Value)
}

func projectAccount(result *svc.ExchangeResult) dto.AccountProjection {
	proj := dto.AccountProjection{
		UserID:        result.Account.UserID,
		Email:         result.Account.Email,
		EmailVerified: result.Account.EmailVerified,
	}
	for _, id := range result.Account.Identities {
		proj.Identities = append(proj.Identities, dto.IdentityProjection{
			ProviderName: id.ProviderName,
			UserID:       id.ProviderUserID,
		})
	}
	return proj
}
