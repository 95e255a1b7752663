package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTrades(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws/trades"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/trades", ServeTrades)
	server := httptest.NewServer(r)
	defer server.Close()

	first := dialTrades(t, server.URL)
	second := dialTrades(t, server.URL)

	// Subscription is registered during the upgrade handler, but give the
	// server a beat before broadcasting.
	time.Sleep(50 * time.Millisecond)

	DefaultHub.Broadcast([]byte(`{"type":"swap"}`))

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"swap"}`, string(msg))
	}
}

func TestHubDropsClosedConnections(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/trades", ServeTrades)
	server := httptest.NewServer(r)
	defer server.Close()

	conn := dialTrades(t, server.URL)
	conn.Close()
	time.Sleep(50 * time.Millisecond)

	// Broadcasting to a dead subscriber must not panic or block.
	DefaultHub.Broadcast([]byte(`{"type":"swap"}`))
}
