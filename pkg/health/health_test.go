package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func probe(h *Health, endpoint func(http.ResponseWriter, *http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	endpoint(w, httptest.NewRequest("GET", "/", nil))
	return w
}

func TestLiveAlwaysOK(t *testing.T) {
	h := New()
	w := probe(h, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestReadyFollowsFlag(t *testing.T) {
	h := New()

	w := probe(h, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h.SetReady(true)
	w = probe(h, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)

	h.SetReady(false)
	w = probe(h, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyRunsChecks(t *testing.T) {
	h := New()
	h.SetReady(true)

	failing := false
	h.AddReadinessCheck("store", time.Second, func(context.Context) error {
		if failing {
			return errors.New("store gone")
		}
		return nil
	})

	w := probe(h, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)

	failing = true
	w = probe(h, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"store"`)
}
