package session

import "time"

// CookieConfig describe la cookie de sesión que emiten los controllers.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
	TTL      time.Duration
}
