package gate

import "github.com/xenking/hostbridge/internal/credstore"

// The call-identity bindings map a per-request call identifier to the one
// credential that authenticated for that call. At most one credential is
// bound per identifier, and a binding lives only for the duration of one
// request's processing: the HTTP layer calls Release when the request ends.

// bind records cred as the identity for callID. Re-binding the same call
// identifier replaces the previous entry, which keeps a repeated
// Authenticate with identical inputs idempotent.
func (g *Gate) bind(callID string, cred *credstore.Credential) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bindings[callID] = cred
}

// lookup returns the credential bound to callID, or nil.
func (g *Gate) lookup(callID string) *credstore.Credential {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bindings[callID]
}

// Release drops the binding for callID. Safe to call when no binding
// exists, so callers can defer it unconditionally.
func (g *Gate) Release(callID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.bindings, callID)
}
