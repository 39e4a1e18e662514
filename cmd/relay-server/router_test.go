package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webremote/internal/config"
	"webremote/internal/microservices/http-api/service"
	"webremote/internal/microservices/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *websocket.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		WSWriteWait:         time.Second,
		WSPongWait:          5 * time.Second,
		WSMaxMessageSize:    1 << 20,
		IngressMaxBodyBytes: 1 << 10,
		CORSOrigins:         []string{"*"},
		SubprocessCommand:   "true",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := websocket.NewRegistry(logger)
	hub := websocket.NewHub(registry, websocket.NewEngine(registry, logger), logger)
	healthService := service.NewHealthService(service.NewMemoryHealthStore(), nil, logger)
	launcher := service.NewProcessLauncher(cfg.SubprocessCommand, "", logger)

	srv := httptest.NewServer(newRouter(cfg, logger, hub, healthService, launcher))
	t.Cleanup(func() {
		registry.CloseAll()
		srv.Close()
		launcher.Wait()
	})
	return srv, hub
}

func TestRouter_PostDataReachesEveryClient(t *testing.T) {
	srv, hub := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	var conns []*gorilla.Conn
	for range 3 {
		conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		conns = append(conns, conn)
	}
	// one browser, one pi, one client that never declares a role
	require.NoError(t, conns[0].WriteMessage(gorilla.TextMessage, []byte(`{"role":"browser"}`)))
	require.NoError(t, conns[1].WriteMessage(gorilla.TextMessage, []byte(`{"role":"pi"}`)))
	require.Eventually(t, func() bool {
		return hub.State(firstWithRole(hub, "browser")) == websocket.StateOpenWithRole &&
			hub.State(firstWithRole(hub, "pi")) == websocket.StateOpenWithRole &&
			hub.Registry().Count() == 3
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/data", "application/octet-stream", bytes.NewReader([]byte("frame-1")))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	for _, conn := range conns {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		mt, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, gorilla.BinaryMessage, mt)
		assert.Equal(t, []byte("frame-1"), data)
	}
}

func firstWithRole(hub *websocket.Hub, role string) string {
	for s := range hub.Registry().AllSessions() {
		if r, ok := hub.Registry().RoleOf(s.ID()); ok && r == role {
			return s.ID()
		}
	}
	return ""
}

func TestRouter_HealthRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"container_status":"UNKNOWN"`)

	update := `{"connected":true,"latency":20,"up_time":1000,"container_status":"RUNNING","last_message_time":1}`
	resp, err = http.Post(srv.URL+"/health", "application/json", strings.NewReader(update))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, update, string(body))

	resp, err = http.Get(srv.URL + "/health/history")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_SubprocessStart(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/subprocess/start")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Contains(t, string(body), `"message":"Process started successfully"`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
