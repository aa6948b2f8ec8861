package trigger

import (
	"context"

	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/metrics"
	"github.com/poad/poollink/internal/observability/logger"
)

// PreTokenDeps contains dependencies for the pre-token-generation orchestrator.
type PreTokenDeps struct {
	Directory directory.Client
	Metrics   *metrics.Metrics
}

// PreToken patches the account's email-verified attribute before token
// issuance. It does not consult the decision engine: by the time tokens are
// generated the identity was already accepted at sign-up.
type PreToken struct {
	directory directory.Client
	metrics   *metrics.Metrics
}

// NewPreToken creates the pre-token-generation orchestrator.
func NewPreToken(deps PreTokenDeps) *PreToken {
	return &PreToken{
		directory: deps.Directory,
		metrics:   deps.Metrics,
	}
}

// Kind implements Orchestrator.
func (o *PreToken) Kind() string { return KindTokenGeneration }

// Handle implements Orchestrator. A directory failure propagates and denies
// token issuance.
func (o *PreToken) Handle(ctx context.Context, evt *Event) (*Event, error) {
	log := logger.FromWithFields(ctx,
		logger.Layer("trigger"),
		logger.Component("pretoken"),
		logger.TriggerSource(evt.TriggerSource),
	)

	if err := o.directory.AdminUpdateAttribute(ctx, evt.UserName, "email_verified", "true"); err != nil {
		log.Error("email_verified patch failed", logger.Err(err))
		o.metrics.ObserveTrigger(KindTokenGeneration, "error")
		return evt, err
	}

	log.Debug("email_verified patched", logger.UserID(evt.UserName))
	o.metrics.ObserveTrigger(KindTokenGeneration, "ok")
	return evt, nil
}
