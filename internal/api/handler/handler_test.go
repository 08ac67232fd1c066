package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strangerchat/backend/internal/api/handler"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/models"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		Port:        "3001",
		Environment: env,
		ClientURL:   "https://chat.example.com",
		Chat:        config.DefaultChatConfig(),
		WebSocket:   config.DefaultWebSocketConfig(),
	}
}

func newRouter(hub *chathub.ManagerService, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewHandler(hub, cfg).Routes(r)
	return r
}

func getJSON(t *testing.T, r http.Handler, path string) map[string]any {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestStatsEndpoints(t *testing.T) {
	hub := chathub.NewManagerService(config.DefaultChatConfig())
	r := newRouter(hub, testConfig("development"))

	// Two connections, one waiting.
	srv := httptest.NewServer(r)
	defer srv.Close()
	a := dial(t, srv, "")
	dial(t, srv, "")
	require.NoError(t, a.WriteJSON(models.Event{Name: models.EventFindStranger}))
	require.Eventually(t, func() bool { return hub.Stats().WaitingUsers == 1 }, 2*time.Second, 10*time.Millisecond)

	health := getJSON(t, r, "/health")
	assert.Equal(t, "healthy", health["status"])
	assert.EqualValues(t, 2, health["connections"])
	assert.EqualValues(t, 1, health["waitingUsers"])
	assert.EqualValues(t, 0, health["activeChats"])
	assert.EqualValues(t, 0, health["totalChatsCreated"])
	assert.Equal(t, "development", health["environment"])
	assert.Contains(t, health, "uptime")
	assert.Contains(t, health, "memory")
	_, err := time.Parse(time.RFC3339Nano, health["timestamp"].(string))
	assert.NoError(t, err)

	stats := getJSON(t, r, "/stats")
	assert.EqualValues(t, 2, stats["totalConnections"])
	assert.EqualValues(t, 1, stats["waitingUsers"])

	public := getJSON(t, r, "/api/stats")
	assert.Equal(t, map[string]any{
		"onlineUsers":       float64(2),
		"activeChats":       float64(0),
		"totalChatsCreated": float64(0),
	}, public)
}

func TestCORS(t *testing.T) {
	hub := chathub.NewManagerService(config.DefaultChatConfig())

	tests := []struct {
		name   string
		env    string
		origin string
		want   string
	}{
		{name: "development echoes any origin", env: "development", origin: "http://evil.test", want: "http://evil.test"},
		{name: "production allows configured origin", env: "production", origin: "https://chat.example.com", want: "https://chat.example.com"},
		{name: "production allows local dev origin", env: "production", origin: "http://localhost:5173", want: "http://localhost:5173"},
		{name: "production rejects unknown origin", env: "production", origin: "http://evil.test", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(hub, testConfig(tt.env))
			req := httptest.NewRequest(http.MethodOptions, "/api/stats", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func dial(t *testing.T, srv *httptest.Server, origin string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServeWebSocket_OriginCheck(t *testing.T) {
	hub := chathub.NewManagerService(config.DefaultChatConfig())
	srv := httptest.NewServer(newRouter(hub, testConfig("production")))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := dial(t, srv, "https://chat.example.com")
	var ev struct {
		Event string `json:"event"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.EventStatsUpdate, ev.Event)
}
