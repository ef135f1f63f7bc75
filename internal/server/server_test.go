package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/server/response"
	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/logging"
	"github.com/ashkam58/mathflix/pkg/sources"
	"github.com/ashkam58/mathflix/pkg/store/memory"
)

func definitions() []catalogs.Record {
	coding := catalogs.NewTestRecord("code-1", "Loop Lab")
	coding.Category = catalogs.CategoryCoding
	coding.IsPremium = true
	return []catalogs.Record{
		catalogs.NewTestRecord("math-1", "Fraction Pizza"),
		catalogs.NewTestRecord("math-2", "Times Table Race"),
		coding,
	}
}

func newTestServer(t *testing.T, cfg Config, defs ...catalogs.Record) *Server {
	t.Helper()
	if len(defs) == 0 {
		defs = definitions()
	}

	client, err := mathflix.New(
		mathflix.WithStore(memory.New()),
		mathflix.WithSource(sources.Static(defs...)),
		mathflix.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	app := &application.Mock{
		ClientFunc:   func() (mathflix.Client, error) { return client, nil },
		VersionValue: "test",
	}

	srv, err := New(app, cfg)
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RateLimit = 0
	return cfg
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *response.Error `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

type gamesPage struct {
	Games      []catalogs.Record `json:"games"`
	Pagination struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
		Count  int `json:"count"`
	} `json:"pagination"`
}

func listGames(t *testing.T, h http.Handler, query string) gamesPage {
	t.Helper()
	w, env := do(t, h, http.MethodGet, "/api/v1/games"+query, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page gamesPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	return page
}

func TestServerInitialization(t *testing.T) {
	done := make(chan struct{})
	go func() {
		newTestServer(t, testConfig())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server.New() did not complete within 5 seconds")
	}
}

func TestNewRequiresKeyWhenAuthEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.AuthEnabled = true

	_, err := New(&application.Mock{}, cfg)
	assert.Error(t, err)
}

func TestListGames(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	page := listGames(t, h, "")
	assert.Equal(t, []string{"math-1", "math-2", "code-1"}, catalogs.IDs(page.Games))
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 50, page.Pagination.Limit)

	for _, g := range page.Games {
		assert.Equal(t, catalogs.ProvenanceCanonical, g.Provenance)
	}
}

func TestListGamesFilters(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"category", "?category=coding", []string{"code-1"}},
		{"premium", "?premium=false", []string{"math-1", "math-2"}},
		{"search", "?q=pizza", []string{"math-1"}},
		{"page", "?limit=1&offset=1", []string{"math-2"}},
		{"past the end", "?offset=10", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := listGames(t, h, tt.query)
			assert.Equal(t, tt.want, catalogs.IDs(page.Games))
		})
	}
}

func TestListGamesRejectsBadQuery(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	for _, q := range []string{"?premium=maybe", "?category=cooking", "?limit=0", "?offset=-1"} {
		w, env := do(t, h, http.MethodGet, "/api/v1/games"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		require.NotNil(t, env.Error, q)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	}
}

func TestGetGame(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	w, env := do(t, h, http.MethodGet, "/api/v1/games/math-2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var g catalogs.Record
	require.NoError(t, json.Unmarshal(env.Data, &g))
	assert.Equal(t, "Times Table Race", g.Title)

	w, env = do(t, h, http.MethodGet, "/api/v1/games/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestIncrementViewsInvalidatesCache(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	// warm the cache
	assert.Zero(t, listGames(t, h, "").Games[0].Views)

	for want := int64(1); want <= 2; want++ {
		w, env := do(t, h, http.MethodPost, "/api/v1/games/math-1/views", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got struct {
			Views int64 `json:"views"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, want, got.Views)
	}

	assert.Equal(t, int64(2), listGames(t, h, "").Games[0].Views)

	w, _ := do(t, h, http.MethodPost, "/api/v1/games/missing/views", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, h, http.MethodGet, "/api/v1/games/math-1/views", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCreateAndDeleteGame(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	draft := catalogs.NewTestRecord("", "Angle Hunt")
	draft.Views = 99
	w, env := do(t, h, http.MethodPost, "/api/v1/games", draft)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created catalogs.Record
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Regexp(t, `^\d{13,}$`, created.ID)
	assert.Equal(t, catalogs.ProvenanceUser, created.Provenance)
	assert.Zero(t, created.Views)

	page := listGames(t, h, "")
	assert.Equal(t, []string{"math-1", "math-2", "code-1", created.ID}, catalogs.IDs(page.Games))

	w, env = do(t, h, http.MethodDelete, "/api/v1/games/math-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, _ = do(t, h, http.MethodDelete, "/api/v1/games/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, listGames(t, h, "").Games, 3)

	w, _ = do(t, h, http.MethodDelete, "/api/v1/games/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateGameValidation(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	w, env := do(t, h, http.MethodPost, "/api/v1/games", map[string]any{"title": "No type"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcileEndpoint(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	w, env := do(t, h, http.MethodPost, "/api/v1/reconcile?dry_run=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		DryRun   bool `json:"dry_run"`
		FirstRun bool `json:"first_run"`
		Records  int  `json:"records"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.True(t, report.DryRun)
	assert.True(t, report.FirstRun)
	assert.Equal(t, 3, report.Records)

	w, env = do(t, h, http.MethodPost, "/api/v1/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.False(t, report.DryRun)

	// stored now, so the next run is not a first run
	w, env = do(t, h, http.MethodPost, "/api/v1/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.False(t, report.FirstRun)

	w, _ = do(t, h, http.MethodGet, "/api/v1/reconcile", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/reconcile?dry_run=perhaps", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateDefinitionsSurface(t *testing.T) {
	defs := definitions()
	defs = append(defs, catalogs.NewTestRecord("math-1", "Fraction Pizza again"))
	h := newTestServer(t, testConfig(), defs...).Handler()

	w, env := do(t, h, http.MethodGet, "/api/v1/games", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CATALOG_MISCONFIGURED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "math-1")

	w, _ = do(t, h, http.MethodGet, "/api/v1/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthProtectsWrites(t *testing.T) {
	cfg := testConfig()
	cfg.AuthEnabled = true
	cfg.APIKey = "secret"
	h := newTestServer(t, cfg).Handler()

	w, _ := do(t, h, http.MethodGet, "/api/v1/games", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/reconcile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/reconcile", nil, "X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthReadyStats(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	for _, path := range []string{"/health", "/api/v1/health", "/api/v1/ready", "/api/v1/stats"} {
		w, env := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Nil(t, env.Error, path)
	}

	w, _ := do(t, h, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()
	listGames(t, h, "")

	w, _ := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mathflix_http_requests_total{code="200",method="GET"}`)
	assert.Contains(t, w.Body.String(), "mathflix_catalog_games 3")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 2
	h := newTestServer(t, cfg).Handler()

	codes := make([]int, 3)
	for i := range codes {
		w, _ := do(t, h, http.MethodGet, "/health", nil)
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestWebSocketReceivesCatalogEvents(t *testing.T) {
	srv := newTestServer(t, testConfig())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/updates/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return srv.WSHub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	draft := catalogs.NewTestRecord("", "Graph Explorer")
	body, err := json.Marshal(draft)
	require.NoError(t, err)
	postResp, err := http.Post(ts.URL+"/api/v1/games", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	postResp.Body.Close()
	require.Equal(t, http.StatusCreated, postResp.StatusCode)

	// the first write also reconciles the empty store, so skip those events
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg struct {
			Type string `json:"type"`
			Data struct {
				Game catalogs.Record `json:"game"`
			} `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "game.added" && msg.Data.Game.Title == "Graph Explorer" {
			break
		}
	}
}
