// Package handler dispatches API requests to privileged actions, enforcing
// the gate in front of every one of them.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/hostbridge/internal/action"
	"github.com/xenking/hostbridge/internal/gate"
	"github.com/xenking/hostbridge/pkg/httpmiddleware"
)

// PathPrefix is the route prefix for action dispatch; everything after it
// is the action name (action names contain slashes, e.g. "system/reboot").
const PathPrefix = "/api/v1/"

// Handler serves /api/v1/<action>. Per request: authenticate, authorize the
// requested action, then invoke it. The 401 and 403 bodies are uniform and
// carry no failure detail; operators read the reasons from the log.
type Handler struct {
	gate    *gate.Gate
	actions *action.Registry
}

// New constructs a Handler around the gate and the action registry.
func New(g *gate.Gate, actions *action.Registry) *Handler {
	return &Handler{gate: g, actions: actions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	callID := httpmiddleware.CallIDFromContext(r.Context())
	// The identity binding lives for this request only.
	defer h.gate.Release(callID)

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, PathPrefix), "/")
	if name == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if !h.gate.Authenticate(r, callID) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.gate.Authorize(callID, name) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	fn, ok := h.actions.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str("ok")
	e.FieldStart("action")
	e.Str(name)
	e.FieldStart("call_id")
	e.Str(callID)
	e.FieldStart("data")
	inv := action.Invocation{CallID: callID, Params: r.URL.Query()}
	if err := fn(r.Context(), inv, &e); err != nil {
		zctx.From(r.Context()).Error("action failed",
			zap.String("action", name),
			zap.String("call_id", callID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(e.Bytes())
}

// writeError emits the uniform JSON error body. All authentication and
// authorization failures look identical from the outside.
func writeError(w http.ResponseWriter, code int, msg string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str("error")
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}
