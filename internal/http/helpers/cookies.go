package helpers

import (
	"net/http"
	"strings"
	"time"

	dto "github.com/poad/poollink/internal/http/dto/session"
)

// parseSameSite mapea el valor de config a http.SameSite.
// Valores desconocidos o vacíos caen a Lax.
func parseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SessionCookie arma la cookie de sesión a partir de la config y del token
// ya codificado. Siempre HttpOnly y Path=/; con TTL cero queda como cookie
// de sesión del navegador.
func SessionCookie(cfg dto.CookieConfig, value string) *http.Cookie {
	ck := &http.Cookie{
		Name:     cfg.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: parseSameSite(cfg.SameSite),
	}
	if strings.TrimSpace(cfg.Domain) != "" {
		ck.Domain = cfg.Domain
	}
	if cfg.TTL > 0 {
		ck.Expires = time.Now().Add(cfg.TTL).UTC()
		ck.MaxAge = int(cfg.TTL.Seconds())
	}
	return ck
}
