// Package server wires configuration, directory client, orchestrators,
// services and controllers into a ready http.Handler.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	rdb "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/poad/poollink/internal/config"
	"github.com/poad/poollink/internal/directory"
	healthctrl "github.com/poad/poollink/internal/http/controllers/health"
	sessionctrl "github.com/poad/poollink/internal/http/controllers/session"
	triggerctrl "github.com/poad/poollink/internal/http/controllers/trigger"
	sessiondto "github.com/poad/poollink/internal/http/dto/session"
	"github.com/poad/poollink/internal/http/router"
	healthsvc "github.com/poad/poollink/internal/http/services/health"
	sessionsvc "github.com/poad/poollink/internal/http/services/session"
	"github.com/poad/poollink/internal/metrics"
	"github.com/poad/poollink/internal/rate"
	"github.com/poad/poollink/internal/trigger"
)

// App agrupa el handler listo y los hooks de ciclo de vida.
type App struct {
	Handler  http.Handler
	Metrics  *metrics.Metrics
	PostAuth *trigger.PostAuth

	cleanup []func() error
}

// Close libera recursos y espera el bookkeeping en vuelo.
func (a *App) Close() error {
	if a.PostAuth != nil {
		a.PostAuth.Wait()
	}
	var firstErr error
	for _, fn := range a.cleanup {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Build construye la aplicación completa a partir de la configuración.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	m := metrics.New()

	dir, err := directory.NewCognito(ctx, directory.CognitoConfig{
		Region:          cfg.Directory.Region,
		UserPoolID:      cfg.Directory.UserPoolID,
		ClientID:        cfg.Directory.ClientID,
		Endpoint:        cfg.Directory.Endpoint,
		AccessKeyID:     cfg.Directory.AccessKeyID,
		SecretAccessKey: cfg.Directory.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("directory client: %w", err)
	}

	return BuildWithDirectory(cfg, log, dir, m)
}

// BuildWithDirectory arma la aplicación sobre un directory.Client ya
// construido. Separado de Build para tests y para el comando check.
func BuildWithDirectory(cfg *config.Config, log *zap.Logger, dir directory.Client, m *metrics.Metrics) (*App, error) {
	app := &App{Metrics: m}

	// Orchestrators + registry
	postAuth := trigger.NewPostAuth(trigger.PostAuthDeps{
		Directory: dir,
		Providers: cfg.Linking.Providers,
		Metrics:   m,
	})
	registry := trigger.NewRegistry(
		trigger.NewPreSignUp(trigger.PreSignUpDeps{Directory: dir, Metrics: m}),
		postAuth,
		trigger.NewPreToken(trigger.PreTokenDeps{Directory: dir, Metrics: m}),
	)
	app.PostAuth = postAuth

	// Session services + controllers
	cookieCfg := sessiondto.CookieConfig{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Session.Domain,
		SameSite: cfg.Session.SameSite,
		Secure:   cfg.Session.Secure,
		TTL:      cfg.SessionTTL(),
	}
	sessionControllers := sessionctrl.NewControllers(
		sessionsvc.NewServices(sessionsvc.Deps{Directory: dir, Metrics: m}),
		sessionctrl.ControllerDeps{Cookie: cookieCfg},
	)

	// Health
	healthController := healthctrl.NewHealthController(healthsvc.NewHealthService(healthsvc.Deps{
		DirectoryCheck: directoryCheck(dir),
	}))

	// Rate limiter
	limiter, cleanup, err := buildLimiter(cfg)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		app.cleanup = append(app.cleanup, cleanup)
	}

	app.Handler = router.New(router.Deps{
		Logger:             log,
		Metrics:            m,
		SessionControllers: sessionControllers,
		TriggerController:  triggerctrl.NewWebhookController(registry),
		HealthController:   healthController,
		RateLimiter:        limiter,
	})
	return app, nil
}

// directoryCheck arma el ping de readiness: una búsqueda barata que sólo
// falla cuando el directorio está caído, no cuando no encuentra nada.
func directoryCheck(dir directory.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := dir.ListAccountsByEmail(ctx, "readiness-probe@invalid")
		if errors.Is(err, directory.ErrUnavailable) {
			return err
		}
		return nil
	}
}

func buildLimiter(cfg *config.Config) (rate.Limiter, func() error, error) {
	if !cfg.Rate.Enabled {
		return nil, nil, nil
	}
	switch cfg.Rate.Kind {
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr: cfg.Rate.Redis.Addr,
			DB:   cfg.Rate.Redis.DB,
		})
		limiter := rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.MaxRequests, cfg.RateWindow())
		return limiter, client.Close, nil
	case "memory":
		return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow()), nil, nil
	default:
		return nil, nil, fmt.Errorf("rate: unknown limiter kind %q", cfg.Rate.Kind)
	}
}
