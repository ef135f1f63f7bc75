package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New(func() float64 { return 3 }, func() float64 { return 12 })

	m.ObserveRequest(http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, http.StatusOK, 10*time.Millisecond)
	m.ObserveReconcile("changed")
	m.ObserveEvent("game.added")
	m.ObserveView()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciles.WithLabelValues("changed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogEvents.WithLabelValues("game.added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.views))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New(func() float64 { return 3 }, nil)
	m.ObserveView()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mathflix_game_views_total 1")
	assert.Contains(t, string(body), "mathflix_websocket_clients 3")
	assert.NotContains(t, string(body), "mathflix_catalog_games")
}

func TestInstancesAreIndependent(t *testing.T) {
	// private registries, so two servers in one process do not collide
	assert.NotPanics(t, func() {
		New(nil, nil)
		New(nil, nil)
	})
}
