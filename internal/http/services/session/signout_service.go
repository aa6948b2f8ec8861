package session

import (
	"context"

	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/metrics"
	"github.com/poad/poollink/internal/observability/logger"
)

// SignOutService defines the global sign-out operation.
type SignOutService interface {
	// SignOut invalida todas las sesiones asociadas al refresh token. Es
	// best-effort: cualquier falla se registra y se descarta, el caller
	// siempre termina "deslogueado".
	SignOut(ctx context.Context, refreshToken string)
}

// SignOutDeps contains dependencies for the sign-out service.
type SignOutDeps struct {
	Directory directory.Client
	Metrics   *metrics.Metrics
}

type signOutService struct {
	deps SignOutDeps
}

// NewSignOutService creates a new SignOutService.
func NewSignOutService(deps SignOutDeps) SignOutService {
	return &signOutService{deps: deps}
}

func (s *signOutService) SignOut(ctx context.Context, refreshToken string) {
	log := logger.FromWithFields(ctx,
		logger.Layer("service"),
		logger.Component("session.signout"),
		logger.Op("SignOut"),
	)

	auth, err := s.deps.Directory.RefreshAuth(ctx, refreshToken)
	if err != nil || auth == nil || auth.AccessToken == "" {
		log.Debug("refresh exchange failed during sign-out", logger.Err(err))
		s.deps.Metrics.ObserveSessionExchange("signout_noop")
		return
	}

	if err := s.deps.Directory.GlobalSignOut(ctx, auth.AccessToken); err != nil {
		log.Debug("global sign-out failed", logger.Err(err))
		s.deps.Metrics.ObserveSessionExchange("signout_noop")
		return
	}
	s.deps.Metrics.ObserveSessionExchange("signout")
}
