package trigger

import (
	"context"
	"strings"
	"sync"

	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/linking"
	"github.com/poad/poollink/internal/metrics"
	"github.com/poad/poollink/internal/observability/logger"
)

// PostAuthDeps contains dependencies for the post-authentication orchestrator.
type PostAuthDeps struct {
	Directory directory.Client

	// Providers is the expected provider set; tags missing from the user's
	// identities get a best-effort link call.
	Providers []string

	Metrics *metrics.Metrics
}

// PostAuth performs link bookkeeping after a successful authentication: one
// best-effort AdminLinkProvider call per configured provider the account does
// not yet carry. Completion never waits on those calls and never fails
// because of them: sign-in must not break over bookkeeping.
type PostAuth struct {
	directory directory.Client
	providers []string
	metrics   *metrics.Metrics

	wg sync.WaitGroup
}

// NewPostAuth creates the post-authentication orchestrator.
func NewPostAuth(deps PostAuthDeps) *PostAuth {
	return &PostAuth{
		directory: deps.Directory,
		providers: deps.Providers,
		metrics:   deps.Metrics,
	}
}

// Kind implements Orchestrator.
func (o *PostAuth) Kind() string { return KindPostAuth }

// Handle implements Orchestrator. Always returns the event unchanged with a
// nil error: link failures are logged, counted, and discarded.
func (o *PostAuth) Handle(ctx context.Context, evt *Event) (*Event, error) {
	log := logger.FromWithFields(ctx,
		logger.Layer("trigger"),
		logger.Component("postauth"),
		logger.TriggerSource(evt.TriggerSource),
	)

	if evt.TriggerSource != SourcePostAuthentication {
		o.metrics.ObserveTrigger(KindPostAuth, "pass")
		return evt, nil
	}

	email := evt.Attribute("email")
	if email == "" {
		// Sin email no hay nada que vincular.
		o.metrics.ObserveTrigger(KindPostAuth, "noop")
		return evt, nil
	}

	// Identidades ya presentes; JSON inválido cuenta como ninguna.
	ids, err := directory.ParseIdentities(evt.Attribute("identities"))
	if err != nil {
		log.Debug("unparseable identities attribute", logger.Err(err))
	}

	missing := o.missingProviders(evt.UserName, ids)
	if len(missing) == 0 {
		o.metrics.ObserveTrigger(KindPostAuth, "noop")
		return evt, nil
	}

	// Fire-and-forget: el request ctx muere con la continuación, las tasks
	// siguen con un contexto desacoplado.
	bgCtx := context.WithoutCancel(ctx)
	for _, provider := range missing {
		o.wg.Add(1)
		go func(provider string) {
			defer o.wg.Done()
			err := o.directory.AdminLinkProvider(bgCtx, provider, email, evt.UserName)
			switch {
			case err == nil:
				log.Debug("provider linked", logger.Provider(provider))
			case directory.IsAlreadyLinked(err):
				// No-op esperado: re-link de un provider ya vinculado.
				log.Debug("provider already linked", logger.Provider(provider))
			default:
				log.Warn("bookkeeping link discarded",
					logger.Provider(provider),
					logger.Err(err),
				)
				o.metrics.ObserveBookkeepingFailure()
			}
		}(provider)
	}

	log.Debug("bookkeeping links issued", logger.Count(len(missing)))
	o.metrics.ObserveTrigger(KindPostAuth, "link")
	return evt, nil
}

// Wait blocks until in-flight bookkeeping finishes. Used on shutdown and in
// tests; request paths never call it.
func (o *PostAuth) Wait() {
	o.wg.Wait()
}

// missingProviders returns configured providers not yet represented in the
// identity list nor matching the authenticating provider itself.
func (o *PostAuth) missingProviders(userName string, ids []directory.Identity) []string {
	selfTag := linking.ProviderTag(userName)
	var missing []string
	for _, p := range o.providers {
		if strings.EqualFold(p, selfTag) {
			continue
		}
		if directory.HasProvider(ids, p) {
			continue
		}
		missing = append(missing, p)
	}
	return missing
}
