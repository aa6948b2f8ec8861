// Package trigger contains the controller adapting lifecycle events
// delivered over HTTP into orchestrator invocations.
package trigger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/poad/poollink/internal/directory"
	httperrors "github.com/poad/poollink/internal/http/errors"
	"github.com/poad/poollink/internal/observability/logger"
	"github.com/poad/poollink/internal/trigger"
)

// WebhookController handles POST /v2/triggers/{source}.
type WebhookController struct {
	registry *trigger.Registry
}

// NewWebhookController creates a new webhook controller.
func NewWebhookController(registry *trigger.Registry) *WebhookController {
	return &WebhookController{registry: registry}
}

// Handle recibe un evento de ciclo de vida y lo adapta al protocolo de
// continuación: éxito responde 200 con el evento (posiblemente mutado),
// rechazo responde 4xx/5xx según la taxonomía.
// POST /v2/triggers/{source}
func (c *WebhookController) Handle(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	invocationID := uuid.NewString()

	ctx := r.Context()
	log := logger.FromWithFields(ctx,
		logger.Layer("controller"),
		logger.Op("WebhookController.Handle"),
		logger.TriggerSource(source),
		logger.String("invocation_id", invocationID),
	)
	ctx = logger.ToContext(ctx, log)

	var evt trigger.Event
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	// El path manda: el body puede venir sin triggerSource.
	if evt.TriggerSource == "" {
		evt.TriggerSource = source
	}

	o, err := c.registry.For(evt.TriggerSource)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrUnknownTrigger.WithDetail(evt.TriggerSource))
		return
	}

	trigger.Invoke(ctx, o, &evt, func(err error, out *trigger.Event) {
		if err != nil {
			c.writeRejection(w, err, log)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(out)
	})
}

// writeRejection maps orchestrator errors to HTTP responses.
func (c *WebhookController) writeRejection(w http.ResponseWriter, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, trigger.ErrNoLinkCandidate):
		log.Debug("lifecycle action denied", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrLinkDenied.WithDetail(err.Error()))
	case errors.Is(err, directory.ErrUnavailable):
		httperrors.WriteError(w, httperrors.ErrDirectoryUnavailable)
	default:
		log.Error("unexpected trigger error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
