package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/commands"
	"github.com/muurk/lightbridge/internal/protocol"
)

type fakeLAN struct {
	statusErr error
	delay     time.Duration
}

func (f *fakeLAN) Discover(ctx context.Context, timeout time.Duration) ([]bridge.DiscoveredDevice, error) {
	return []bridge.DiscoveredDevice{{IP: "192.168.1.42", Port: 4003, Model: "H6160"}}, nil
}

func (f *fakeLAN) GetStatus(ctx context.Context, host string, port int) (*bridge.StatusResponse, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &bridge.StatusResponse{Online: true, On: true, Brightness: 42}, nil
}

func (f *fakeLAN) Send(ctx context.Context, host string, port int, body json.RawMessage) error {
	return nil
}

func (f *fakeLAN) SendCommand(ctx context.Context, addr bridge.DeviceAddress, fr *protocol.Frame) error {
	return nil
}

type fakeHealth struct{ state bridge.State }

func (f fakeHealth) State() bridge.State { return f.state }
func (f fakeHealth) Stats() bridge.Stats { return bridge.Stats{Received: 3, Malformed: 1} }

type countingCloser struct{ n atomic.Int32 }

func (c *countingCloser) Close() error {
	c.n.Add(1)
	return nil
}

func newTestServer(t *testing.T, lan *fakeLAN, health HealthSource) *Server {
	t.Helper()
	registry := commands.NewRegistry(commands.Dependencies{LAN: lan})
	srv, err := New(&Config{Host: "127.0.0.1"}, registry, health)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := New(&Config{}, nil, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeLAN{}, fakeHealth{state: bridge.StateOpen})

	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "open", resp.Bridge)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, uint64(3), resp.Stats.Received)
	assert.NotEmpty(t, resp.Version.Version)
}

func TestHealthDegradedWhenBindFailed(t *testing.T) {
	srv := newTestServer(t, &fakeLAN{}, fakeHealth{state: bridge.StateFailed})

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestLANStatusRoute(t *testing.T) {
	srv := newTestServer(t, &fakeLAN{}, nil)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/lan/status", `{"host":"192.168.1.42"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var status bridge.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.On)
	assert.Equal(t, 42, status.Brightness)
}

func TestErrorStatusCodes(t *testing.T) {
	timeout := &bridge.Error{Type: bridge.ErrTypeTimeout, Message: "no devStatus response within 2s"}

	tests := []struct {
		name     string
		lan      *fakeLAN
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"missing host", &fakeLAN{}, http.MethodPost, "/api/v1/lan/status", `{}`, http.StatusBadRequest, "invalid_argument"},
		{"bad json", &fakeLAN{}, http.MethodPost, "/api/v1/lan/status", `{`, http.StatusBadRequest, "invalid_argument"},
		{"device timeout", &fakeLAN{statusErr: timeout}, http.MethodPost, "/api/v1/lan/status", `{"host":"10.0.0.9"}`, http.StatusGatewayTimeout, "timeout"},
		{"cloud not configured", &fakeLAN{}, http.MethodPost, "/api/v1/cloud/devices", `{"api_key":"k"}`, http.StatusServiceUnavailable, "unavailable"},
		{"unknown command", &fakeLAN{}, http.MethodPost, "/api/v1/commands/govee_explode", `{}`, http.StatusNotFound, "unknown_command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.lan, nil)
			rec := do(t, srv.Handler(), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestTimeoutCarriesHint(t *testing.T) {
	timeout := &bridge.Error{Type: bridge.ErrTypeTimeout, Message: "no devStatus response within 2s"}
	srv := newTestServer(t, &fakeLAN{statusErr: timeout}, nil)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/lan/status", `{"host":"10.0.0.9"}`)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Hint, "LAN Control")
}

func TestListAndInvokeCommands(t *testing.T) {
	srv := newTestServer(t, &fakeLAN{}, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/commands", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []CommandInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 11)

	rec = do(t, srv.Handler(), http.MethodPost, "/api/v1/commands/govee_discover", `{"timeout_ms":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "192.168.1.42")
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &fakeLAN{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "tauri://localhost")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) RPCResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp RPCResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestWebSocketRPC(t *testing.T) {
	srv := newTestServer(t, &fakeLAN{}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"id":      1,
		"command": "govee_status",
		"args":    map[string]any{"host": "192.168.1.42"},
	}))
	resp := readResponse(t, conn)
	assert.JSONEq(t, `1`, string(resp.ID))
	assert.True(t, resp.OK)
	result, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	assert.Contains(t, string(result), `"brightness":42`)

	require.NoError(t, conn.WriteJSON(map[string]any{"id": "x", "command": "govee_explode"}))
	resp = readResponse(t, conn)
	assert.JSONEq(t, `"x"`, string(resp.ID))
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "unknown command")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	resp = readResponse(t, conn)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "invalid request")

	require.NoError(t, conn.WriteJSON(map[string]any{"id": 2}))
	resp = readResponse(t, conn)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "missing command")
}

func TestWebSocketConcurrentRequests(t *testing.T) {
	srv := newTestServer(t, &fakeLAN{delay: 200 * time.Millisecond}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)

	// A slow status call must not hold up a later fast one.
	require.NoError(t, conn.WriteJSON(map[string]any{
		"id": "slow", "command": "govee_status", "args": map[string]any{"host": "10.0.0.1"},
	}))
	require.NoError(t, conn.WriteJSON(map[string]any{"id": "fast", "command": "govee_discover", "args": map[string]any{"timeout_ms": 0}}))

	first := readResponse(t, conn)
	second := readResponse(t, conn)
	assert.JSONEq(t, `"fast"`, string(first.ID))
	assert.JSONEq(t, `"slow"`, string(second.ID))
	assert.True(t, first.OK)
	assert.True(t, second.OK)
}

func TestShutdownClosesSessionsAndResources(t *testing.T) {
	srv := newTestServer(t, &fakeLAN{}, nil)
	closer := &countingCloser{}
	srv.RegisterCloser(closer)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(listener) }()

	url := "ws://" + listener.Addr().String() + "/ws"
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 20*time.Millisecond)
	defer func() { _ = conn.Close() }()

	require.Eventually(t, func() bool { return srv.GetActiveSessions() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	assert.Equal(t, int32(1), closer.n.Load())
	assert.Equal(t, 0, srv.GetActiveSessions())

	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
