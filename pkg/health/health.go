// Package health provides liveness and readiness probe endpoints.
//
// Readiness checks run inline on each /readyz request with a per-check
// timeout; this service has few and cheap checks (a stat of the credentials
// file), so there is no background polling machinery.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// Check reports nil when the checked component is usable.
type Check func(ctx context.Context) error

type namedCheck struct {
	name    string
	timeout time.Duration
	check   Check
}

// Health serves the /livez and /readyz endpoints.
type Health struct {
	ready atomic.Bool

	mu     sync.Mutex
	checks []namedCheck
}

// New returns a Health in the not-ready state. Call SetReady(true) once
// startup completes.
func New() *Health {
	return &Health{}
}

// SetReady flips the overall readiness flag. Checks still run: a ready
// service with a failing check reports not ready.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// AddReadinessCheck registers a named readiness check with a timeout.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, namedCheck{name: name, timeout: timeout, check: check})
}

// LiveEndpoint always reports the process as alive.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, "ok", nil)
}

// ReadyEndpoint reports 200 when the service is marked ready and every
// registered check passes, 503 otherwise with the failing check names.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeStatus(w, http.StatusServiceUnavailable, "not ready", nil)
		return
	}

	h.mu.Lock()
	checks := make([]namedCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.Unlock()

	var failed []string
	for _, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		err := c.check(ctx)
		cancel()
		if err != nil {
			failed = append(failed, c.name)
		}
	}

	if len(failed) > 0 {
		writeStatus(w, http.StatusServiceUnavailable, "not ready", failed)
		return
	}
	writeStatus(w, http.StatusOK, "ok", nil)
}

func writeStatus(w http.ResponseWriter, code int, status string, failed []string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str(status)
	if len(failed) > 0 {
		e.FieldStart("failed")
		e.ArrStart()
		for _, name := range failed {
			e.Str(name)
		}
		e.ArrEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}
