package trigger

import (
	"context"
	"fmt"
)

// Callback is the platform's continuation: it must be invoked exactly once,
// with a non-nil error to reject the lifecycle action or a nil error plus
// the (possibly mutated) event to accept it. Both positional arguments are
// present on every path.
type Callback func(err error, evt *Event)

// Invoke adapts a result-type orchestrator to the callback contract.
// The callback fires exactly once; on rejection it receives the original
// event untouched.
func Invoke(ctx context.Context, o Orchestrator, evt *Event, cb Callback) {
	out, err := o.Handle(ctx, evt)
	if err != nil {
		cb(err, evt)
		return
	}
	cb(nil, out)
}

// Registry routes events to orchestrators by kind.
type Registry struct {
	byKind map[string]Orchestrator
}

// NewRegistry indexes the given orchestrators. Duplicate kinds panic: that
// is a wiring bug, not a runtime condition.
func NewRegistry(orchestrators ...Orchestrator) *Registry {
	r := &Registry{byKind: make(map[string]Orchestrator, len(orchestrators))}
	for _, o := range orchestrators {
		if _, dup := r.byKind[o.Kind()]; dup {
			panic(fmt.Sprintf("trigger: duplicate orchestrator for kind %q", o.Kind()))
		}
		r.byKind[o.Kind()] = o
	}
	return r
}

// For resolves the orchestrator for an event's source.
func (r *Registry) For(triggerSource string) (Orchestrator, error) {
	evt := Event{TriggerSource: triggerSource}
	if o, ok := r.byKind[evt.Kind()]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTrigger, triggerSource)
}

// Dispatch resolves and runs the orchestrator for evt.
func (r *Registry) Dispatch(ctx context.Context, evt *Event) (*Event, error) {
	o, err := r.For(evt.TriggerSource)
	if err != nil {
		return evt, err
	}
	return o.Handle(ctx, evt)
}
