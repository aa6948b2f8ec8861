// Package session contains controllers for the session endpoints.
package session

import (
	dto "github.com/poad/poollink/internal/http/dto/session"
	svc "github.com/poad/poollink/internal/http/services/session"
)

// ControllerDeps contains additional dependencies for controllers.
type ControllerDeps struct {
	Cookie dto.CookieConfig
}

// Controllers agrupa todos los controllers del dominio session.
type Controllers struct {
	Exchange *ExchangeController
	SignOut  *SignOutController
}

// NewControllers creates the session controllers aggregator.
func NewControllers(s svc.Services, deps ControllerDeps) *Controllers {
	return &Controllers{
		Exchange: NewExchangeController(s.Exchange, deps.Cookie),
		SignOut:  NewSignOutController(s.SignOut, deps.Cookie),
	}
}
