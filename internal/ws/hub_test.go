package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentranbao-ct/chat-timeline/internal/timeline"
)

func newHubServer(t *testing.T, hub *Hub) string {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.ServeConn(r.Context(), conn, r.URL.Query().Get("user"))
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func (h *Hub) connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	url := newHubServer(t, hub)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?user=alice", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.connections() == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.MessageReceived([]string{"alice", "bob"}, "conv-1", timeline.DisplayMessage{ID: "m1", Text: "hi"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type    EventType      `json:"type"`
		Payload MessagePayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventMessageReceived, event.Type)
	assert.Equal(t, "conv-1", event.Payload.ConversationID)
	assert.Equal(t, "m1", event.Payload.Message.ID)
}

func TestHubShutdownWithManyClients(t *testing.T) {
	// More clients than the unregister channel buffers, so shutdown
	// stalls if any pump blocks on its unregister send.
	const clients = 80

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	url := newHubServer(t, hub)
	conns := make([]*websocket.Conn, 0, clients)
	for i := 0; i < clients; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s?user=u%d", url, i), nil)
		require.NoError(t, err)
		conns = append(conns, conn)
	}
	defer func() {
		for _, conn := range conns {
			conn.Close()
		}
	}()

	require.Eventually(t, func() bool {
		return hub.connections() == clients
	}, 3*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-hub.done:
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not finish shutting down")
	}
	assert.Zero(t, hub.connections())
}

func TestHubRejectsClientsAfterShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	<-hub.done

	url := newHubServer(t, hub)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?user=late", nil)
	require.NoError(t, err)
	defer conn.Close()

	// ServeConn closes the client instead of registering it.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.Zero(t, hub.connections())
}
