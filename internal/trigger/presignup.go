package trigger

import (
	"context"
	"fmt"

	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/linking"
	"github.com/poad/poollink/internal/metrics"
	"github.com/poad/poollink/internal/observability/logger"
)

// PreSignUpDeps contains dependencies for the pre-sign-up orchestrator.
type PreSignUpDeps struct {
	Directory directory.Client
	Metrics   *metrics.Metrics
}

// PreSignUp decides whether a federated sign-up silently merges into an
// existing account. States: START -> LOOKUP -> DECIDE -> {LINK, REJECT} for
// external-provider sign-ups; any other source is a pass-through.
type PreSignUp struct {
	directory directory.Client
	metrics   *metrics.Metrics
}

// NewPreSignUp creates the pre-sign-up orchestrator.
func NewPreSignUp(deps PreSignUpDeps) *PreSignUp {
	return &PreSignUp{
		directory: deps.Directory,
		metrics:   deps.Metrics,
	}
}

// Kind implements Orchestrator.
func (o *PreSignUp) Kind() string { return KindPreSignUp }

// Handle implements Orchestrator.
//
// Directory failures during LOOKUP fail closed: the error propagates and the
// platform denies the sign-up. Ambiguous linking is never accepted.
func (o *PreSignUp) Handle(ctx context.Context, evt *Event) (*Event, error) {
	log := logger.FromWithFields(ctx,
		logger.Layer("trigger"),
		logger.Component("presignup"),
		logger.TriggerSource(evt.TriggerSource),
	)

	if evt.TriggerSource != SourcePreSignUpExternal {
		// Pass-through: evento intacto, sin error.
		log.Debug("pass-through sign-up")
		o.metrics.ObserveTrigger(KindPreSignUp, "pass")
		return evt, nil
	}

	email := evt.Attribute("email")
	if email == "" {
		// Sin email no hay candidatos posibles.
		log.Info("external sign-up without email denied")
		o.metrics.ObserveLinkDecision(string(linking.ReasonNoCandidate))
		o.metrics.ObserveTrigger(KindPreSignUp, "reject")
		return evt, fmt.Errorf("%w: sign-up has no email", ErrNoLinkCandidate)
	}

	// LOOKUP
	accounts, err := o.directory.ListAccountsByEmail(ctx, email)
	if err != nil {
		log.Error("account lookup failed, denying sign-up", logger.Err(err))
		o.metrics.ObserveTrigger(KindPreSignUp, "error")
		return evt, err
	}

	// DECIDE
	tag := linking.ProviderTag(evt.UserName)
	decision := linking.Decide(tag, linking.Candidates(accounts))
	o.metrics.ObserveLinkDecision(string(decision.Reason))

	if !decision.ShouldLink {
		log.Info("sign-up rejected",
			logger.Provider(tag),
			logger.String("reason", string(decision.Reason)),
		)
		o.metrics.ObserveTrigger(KindPreSignUp, "reject")
		return evt, fmt.Errorf("%w: %s", ErrNoLinkCandidate, decision.Reason)
	}

	// LINK
	evt.Response.AutoVerifyEmail = true
	log.Info("sign-up linked to existing account", logger.Provider(tag))
	o.metrics.ObserveTrigger(KindPreSignUp, "link")
	return evt, nil
}
