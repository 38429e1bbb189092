package httpmiddleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// callIDKey is the context key for the per-request call identifier.
type callIDKey struct{}

// CallIDFromContext extracts the call identifier assigned by RequestID.
// It returns an empty string if the middleware did not run.
func CallIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(callIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestID assigns every request a unique call identifier. The identifier
// scopes the authenticated-identity binding in the gate, so it must be
// unique per in-flight request: a client-supplied X-Request-ID is reused
// only when it looks sane (1-64 printable ASCII bytes), otherwise a fresh
// UUID is minted.
//
// The identifier is echoed on the X-Request-ID response header and stored
// in the request context.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if !plausibleCallID(id) {
				id = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", id)
			ctx := context.WithValue(r.Context(), callIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func plausibleCallID(id string) bool {
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= 0x20 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
