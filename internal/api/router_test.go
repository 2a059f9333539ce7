package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"package-organizer/internal/adapters/kvstore"
	"package-organizer/internal/api/dto"
	"package-organizer/internal/persistence"
	"package-organizer/internal/platform/metrics"
	"package-organizer/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	org := services.NewOrganizer(
		persistence.NewGateway(kvstore.NewMemoryStore(), nil),
		services.Options{Metrics: metrics.New(reg)},
	)
	org.Load(context.Background())

	srv := httptest.NewServer(NewRouter(org, reg))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, dto.StateResponse) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var state dto.StateResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(raw, &state)
	}
	return resp, state
}

func TestStateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, state := do(t, srv, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "assigning", state.Phase)
	assert.Equal(t, 50, state.PackageRange)
	assert.Len(t, state.Zones, 5)
	assert.Len(t, state.Unassigned, 50)
	assert.True(t, state.FirstRun)
	assert.True(t, state.DarkMode)

	resp, _ = do(t, srv, http.MethodPost, "/state", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodGet, resp.Header.Get("Allow"))
}

func TestAssignAndDeliverFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, state := do(t, srv, http.MethodPost, "/intents/settings", `{"packageRange": 20}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 20, state.PackageRange)

	resp, _ = do(t, srv, http.MethodPost, "/intents/selection?action=select", `{"number": 4}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, state = do(t, srv, http.MethodPost, "/intents/selection", `{"number": 7}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{4, 7}, state.Selection)

	resp, state = do(t, srv, http.MethodPost, "/intents/assign", `{"zone": "trunk"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"4": "trunk", "7": "trunk"}, state.Packages)
	assert.Empty(t, state.Selection)
	assert.True(t, state.CanDeliver)

	resp, state = do(t, srv, http.MethodPost, "/intents/phase", `{"phase": "delivering"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "delivering", state.Phase)

	resp, state = do(t, srv, http.MethodPost, "/intents/deliver", `{"number": 4}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{4}, state.Delivered)
	assert.Equal(t, 1, state.Counts.Remaining)

	resp, state = do(t, srv, http.MethodPost, "/intents/undo", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, state.Delivered)
}

func TestRejectedIntentReturns422(t *testing.T) {
	srv := newTestServer(t)

	resp, state := do(t, srv, http.MethodPost, "/intents/assign", `{"numbers": [1], "zone": "roof"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Len(t, state.Notices, 1)
	assert.Equal(t, "validation", state.Notices[0].Kind)

	resp, _ = do(t, srv, http.MethodPost, "/intents/settings", `{"packageRange": 101}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		path string
		body string
	}{
		{"/intents/remove", `{}`},
		{"/intents/remove", `{"number": `},
		{"/intents/remove", `{"number": 1} {"number": 2}`},
		{"/intents/remove", `{"nope": 1}`},
		{"/intents/phase", `{"phase": "driving"}`},
		{"/intents/settings", `{}`},
		{"/intents/selection?action=shuffle", `{"number": 1}`},
	}
	for _, tc := range cases {
		resp, _ := do(t, srv, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s %s", tc.path, tc.body)
	}
}

func TestExportImport(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/intents/assign", `{"numbers": [1, 2], "zone": "backLeft"}`)

	resp, err := srv.Client().Get(srv.URL + "/export")
	require.NoError(t, err)
	doc, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "package-organizer-")
	assert.Contains(t, string(doc), `"version": "v10"`)

	do(t, srv, http.MethodPost, "/intents/reset", "")

	resp2, state := do(t, srv, http.MethodPost, "/import", string(doc))
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, map[string]string{"1": "backLeft", "2": "backLeft"}, state.Packages)

	resp3, state := do(t, srv, http.MethodPost, "/import", `[1,2,3]`)
	require.Equal(t, http.StatusBadRequest, resp3.StatusCode)
	assert.Equal(t, "import_malformed", state.Notices[0].Kind)
	assert.Len(t, state.Packages, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/intents/assign", `{"numbers": [3], "zone": "trunk"}`)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Contains(t, string(body), `organizer_intents_total{intent="assign",outcome="ok"} 1`)
	assert.Contains(t, string(body), "organizer_assigned_packages 1")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
