package hcloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hcloud-runner/internal/util/ptr"
)

// testServer creates an httptest server that can be used to mock Hetzner Cloud API responses.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux
}

// newTestServer creates a new test server for mocking the Hetzner Cloud API.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testServer{
		server: server,
		mux:    mux,
	}
}

// realClient returns a RealClient configured to use the test server.
func (ts *testServer) realClient(opts ...ClientOption) *RealClient {
	return NewRealClient("test-token", append([]ClientOption{WithEndpoint(ts.server.URL)}, opts...)...)
}

// handleFunc registers a handler for a specific pattern.
func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

// jsonResponse writes a JSON response with the given status code and body.
func jsonResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func errorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	jsonResponse(w, statusCode, schema.ErrorResponse{
		Error: schema.Error{Code: code, Message: message},
	})
}

func buildTestOpts(t *testing.T) hcloud.ServerCreateOpts {
	t.Helper()
	opts, err := NewRequestBuilder(testBase()).WithNetwork(ptr.Int64(42)).Build()
	require.NoError(t, err)
	return opts
}

func TestRealClient_CreateServer(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body map[string]any
	ts.handleFunc("POST /servers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("User-Agent"), "hcloud-runner/1.2.3")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		jsonResponse(w, http.StatusCreated, schema.ServerCreateResponse{
			Server: schema.Server{ID: 4711, Name: "gh-runner-1a2b3c4d", Status: "initializing"},
			Action: schema.Action{ID: 1, Command: "create_server", Status: "running"},
		})
	})

	client := ts.realClient(WithApplication("hcloud-runner", "1.2.3"))
	server, err := client.CreateServer(context.Background(), buildTestOpts(t))
	require.NoError(t, err)
	assert.Equal(t, int64(4711), server.ID)
	assert.Equal(t, hcloud.ServerStatusInitializing, server.Status)

	assert.Equal(t, "gh-runner-1a2b3c4d", body["name"])
	assert.Equal(t, "cx22", body["server_type"])
	assert.Equal(t, "ubuntu-24.04", body["image"])
	assert.Equal(t, "nbg1", body["location"])
	assert.Equal(t, "#cloud-config\n", body["user_data"])
	assert.Equal(t, []any{float64(42)}, body["networks"])
	assert.Equal(t, map[string]any{"hcloud-runner.io/owner-id": "1"}, body["labels"])
	assert.Equal(t, true, body["start_after_create"])
}

func TestRealClient_CreateServer_APIError(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var calls atomic.Int32
	ts.handleFunc("POST /servers", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		errorResponse(w, http.StatusPreconditionFailed, "resource_unavailable", "server location disabled")
	})

	_, err := ts.realClient().CreateServer(context.Background(), buildTestOpts(t))
	require.Error(t, err)
	assert.Equal(t, ClassTransient, ClassifyByErrorCode()(err))
	assert.Equal(t, ClassTransient, ClassifyByMarkers()(err))
	assert.Equal(t, "resource_unavailable", ErrorCode(err))
	assert.Contains(t, err.Error(), "gh-runner-1a2b3c4d")
	// Library retries are disabled; the caller owns the attempt budget.
	assert.Equal(t, int32(1), calls.Load())
}

func TestRealClient_CreateServer_NoRetryOnServerError(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var calls atomic.Int32
	ts.handleFunc("POST /servers", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		errorResponse(w, http.StatusServiceUnavailable, "unavailable", "maintenance")
	})

	_, err := ts.realClient().CreateServer(context.Background(), buildTestOpts(t))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRealClient_GetServer(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("GET /servers/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "4711" {
			errorResponse(w, http.StatusNotFound, "not_found", "server not found")
			return
		}
		jsonResponse(w, http.StatusOK, schema.ServerGetResponse{
			Server: schema.Server{ID: 4711, Name: "gh-runner-1a2b3c4d", Status: "running"},
		})
	})

	client := ts.realClient()

	t.Run("server found", func(t *testing.T) {
		server, err := client.GetServer(context.Background(), 4711)
		require.NoError(t, err)
		assert.Equal(t, hcloud.ServerStatusRunning, server.Status)
	})

	t.Run("server not found", func(t *testing.T) {
		_, err := client.GetServer(context.Background(), 1)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestRealClient_DeleteServer(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var deleted atomic.Int64
	ts.handleFunc("DELETE /servers/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "13" {
			errorResponse(w, http.StatusLocked, "locked", "server is locked")
			return
		}
		deleted.Store(4711)
		jsonResponse(w, http.StatusOK, schema.ServerDeleteResponse{
			Action: schema.Action{ID: 2, Command: "delete_server", Status: "running"},
		})
	})

	client := ts.realClient()
	require.NoError(t, client.DeleteServer(context.Background(), 4711))
	assert.Equal(t, int64(4711), deleted.Load())

	err := client.DeleteServer(context.Background(), 13)
	require.Error(t, err)
	assert.Equal(t, "locked", ErrorCode(err))
	assert.Contains(t, err.Error(), "failed to delete server 13")
}

func TestRealClient_Instrumentation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.handleFunc("GET /servers/{id}", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerGetResponse{
			Server: schema.Server{ID: 1, Name: "a", Status: "running"},
		})
	})

	reg := prometheus.NewRegistry()
	_, err := ts.realClient(WithInstrumentation(reg)).GetServer(context.Background(), 1)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	found := false
	for _, n := range names {
		if strings.HasPrefix(n, "hcloud_api_") {
			found = true
		}
	}
	assert.True(t, found, "expected hcloud_api_* metrics, got %v", names)
}
