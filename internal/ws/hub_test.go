package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/refresh"
	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleUpgrade))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d clients, have %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	first := dialHub(t, hub)
	second := dialHub(t, hub)
	waitForClients(t, hub, 2)

	hub.Broadcast(refresh.Event{
		Type:      refresh.EventSnapshot,
		Tokens:    []dex.Token{{Address: "addr-a", Name: "Token"}},
		Timestamp: time.Now(),
	})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var event refresh.Event
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, refresh.EventSnapshot, event.Type)
		require.Len(t, event.Tokens, 1)
		assert.Equal(t, "addr-a", event.Tokens[0].Address)
	}
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// broadcasting to an empty hub is a no-op
	hub.Broadcast(refresh.Event{Type: refresh.EventTokenNew})
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub := NewHub()

	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	hub.Close()
	assert.Zero(t, hub.ClientCount())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
