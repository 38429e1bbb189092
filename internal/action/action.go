// Package action holds the privileged host operations exposed through the
// API. Each action streams its result into the response encoder; the gate
// in front of the dispatcher decides who may invoke what.
package action

import (
	"context"
	"net/url"
	"sort"

	"github.com/go-faster/jx"
)

// Invocation carries the per-request inputs into an action.
type Invocation struct {
	// CallID is the request's call identifier, for diagnostic attribution.
	CallID string
	// Params are the query parameters of the request.
	Params url.Values
}

// Func implements one privileged operation. It writes the "data" portion of
// the response into e; on error nothing it wrote is sent to the client.
type Func func(ctx context.Context, inv Invocation, e *jx.Encoder) error

// Registry maps action names (e.g. "system/reboot") to their
// implementations. It is populated once during startup and read-only
// afterwards, so lookups need no locking.
type Registry struct {
	actions map[string]Func
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Func)}
}

// Register adds fn under name, replacing any previous registration.
func (r *Registry) Register(name string, fn Func) {
	r.actions[name] = fn
}

// Lookup resolves an action by name.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.actions[name]
	return fn, ok
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
