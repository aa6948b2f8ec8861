package session

import (
	"context"
	"errors"

	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/metrics"
	"github.com/poad/poollink/internal/observability/logger"
)

// ErrUnauthenticated is the only failure the exchange path surfaces. Every
// directory problem (invalid refresh token, expired credential, transient
// outage) degrades to it; the caller answers 401, never 5xx.
var ErrUnauthenticated = errors.New("session: not authenticated")

// ExchangeResult is the service-level outcome of a refresh exchange.
type ExchangeResult struct {
	AccessToken string
	ExpiresIn   int32

	// RefreshToken is the credential to hand back to the caller: the rotated
	// one when the directory issued it, the original otherwise. Rotation is
	// optional per call; the exchange never mints a credential from nothing.
	RefreshToken string

	Account directory.Account
}

// ExchangeService defines the refresh-token exchange operation.
type ExchangeService interface {
	Exchange(ctx context.Context, refreshToken string) (*ExchangeResult, error)
}

// ExchangeDeps contains dependencies for the exchange service.
type ExchangeDeps struct {
	Directory directory.Client
	Metrics   *metrics.Metrics
}

type exchangeService struct {
	deps ExchangeDeps
}

// NewExchangeService creates a new ExchangeService.
func NewExchangeService(deps ExchangeDeps) ExchangeService {
	return &exchangeService{deps: deps}
}

func (s *exchangeService) Exchange(ctx context.Context, refreshToken string) (*ExchangeResult, error) {
	log := logger.FromWithFields(ctx,
		logger.Layer("service"),
		logger.Component("session.exchange"),
		logger.Op("Exchange"),
	)

	auth, err := s.deps.Directory.RefreshAuth(ctx, refreshToken)
	if err != nil {
		log.Debug("refresh exchange rejected", logger.Err(err))
		s.deps.Metrics.ObserveSessionExchange("unauthenticated")
		return nil, ErrUnauthenticated
	}
	if auth == nil || auth.AccessToken == "" {
		log.Debug("refresh exchange returned no access token")
		s.deps.Metrics.ObserveSessionExchange("unauthenticated")
		return nil, ErrUnauthenticated
	}

	acc, err := s.deps.Directory.GetAccount(ctx, auth.AccessToken)
	if err != nil {
		log.Debug("account fetch failed after exchange", logger.Err(err))
		s.deps.Metrics.ObserveSessionExchange("unauthenticated")
		return nil, ErrUnauthenticated
	}

	rotated := auth.RefreshToken
	if rotated == "" {
		rotated = refreshToken
	}

	s.deps.Metrics.ObserveSessionExchange("ok")
	log.Debug("session exchanged", logger.UserID(acc.UserID))
	return &ExchangeResult{
		AccessToken:  auth.AccessToken,
		ExpiresIn:    auth.ExpiresIn,
		RefreshToken: rotated,
		Account:      *acc,
	}, nil
}
