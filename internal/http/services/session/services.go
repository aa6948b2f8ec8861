// Package session contiene los services del dominio session.
package session

import (
	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/metrics"
)

// Deps contiene las dependencias para crear los services session.
type Deps struct {
	Directory directory.Client
	Metrics   *metrics.Metrics
}

// Services agrupa todos los services del dominio session.
type Services struct {
	Exchange ExchangeService
	SignOut  SignOutService
}

// NewServices crea el agregador de services session.
func NewServices(d Deps) Services {
	return Services{
		Exchange: NewExchangeService(ExchangeDeps{
			Directory: d.Directory,
			Metrics:   d.Metrics,
		}),
		SignOut: NewSignOutService(SignOutDeps{
			Directory: d.Directory,
			Metrics:   d.Metrics,
		}),
	}
}
