// Package trigger hosts the user-pool lifecycle orchestrators. Each
// orchestrator is a single-shot state machine over one TriggerEvent: it reads
// the event, consults the directory and the linking engine, mutates only the
// response region, and returns the event (result-type API). contract.go
// adapts that back into the platform's callback continuation.
package trigger

import (
	"context"
	"errors"
	"strings"
)

// Trigger sources the service reacts to. Any other source is passed through
// untouched by the matching orchestrator.
const (
	SourcePreSignUpExternal  = "PreSignUp_ExternalProvider"
	SourcePostAuthentication = "PostAuthentication_Authentication"
)

// Kinds, the prefix of a trigger source before the first underscore.
const (
	KindPreSignUp       = "PreSignUp"
	KindPostAuth        = "PostAuthentication"
	KindTokenGeneration = "TokenGeneration"
)

// Request is the read-only region of the event.
type Request struct {
	UserAttributes map[string]string `json:"userAttributes"`
}

// Response is the only region an orchestrator may mutate.
type Response struct {
	AutoConfirmUser bool `json:"autoConfirmUser"`
	AutoVerifyEmail bool `json:"autoVerifyEmail"`
	AutoVerifyPhone bool `json:"autoVerifyPhone"`
}

// Event is the lifecycle payload delivered by the hosting platform. The
// platform owns it; the continuation protocol requires echoing the full
// event back, possibly with a mutated Response.
type Event struct {
	Version       string   `json:"version,omitempty"`
	Region        string   `json:"region,omitempty"`
	UserPoolID    string   `json:"userPoolId"`
	UserName      string   `json:"userName"`
	TriggerSource string   `json:"triggerSource"`
	Request       Request  `json:"request"`
	Response      Response `json:"response"`
}

// Attribute returns a user attribute, empty when absent.
func (e *Event) Attribute(name string) string {
	if e.Request.UserAttributes == nil {
		return ""
	}
	return e.Request.UserAttributes[name]
}

// Kind returns the source prefix ("PreSignUp_ExternalProvider" -> "PreSignUp").
func (e *Event) Kind() string {
	if i := strings.Index(e.TriggerSource, "_"); i > 0 {
		return e.TriggerSource[:i]
	}
	return e.TriggerSource
}

// Orchestrator handles one lifecycle kind. Handle returns the (possibly
// mutated) event on success or the unmodified event plus an error on
// rejection; both are always non-nil so the continuation protocol can echo
// the event on every path.
type Orchestrator interface {
	Kind() string
	Handle(ctx context.Context, evt *Event) (*Event, error)
}

// Error taxonomy of the trigger paths.
var (
	// ErrNoLinkCandidate deniega el sign-up: no hay cuenta destino para
	// vincular la identidad externa.
	ErrNoLinkCandidate = errors.New("no such link target")

	// ErrUnknownTrigger: la fuente del evento no corresponde a ningún
	// orchestrator registrado.
	ErrUnknownTrigger = errors.New("unknown trigger source")
)
