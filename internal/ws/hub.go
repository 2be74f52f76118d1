package ws

import (
	"context"
	"sync"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/gorilla/websocket"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
	"github.com/nguyentranbao-ct/chat-timeline/internal/timeline"
	"github.com/nguyentranbao-ct/chat-timeline/internal/usecase"
)

// Ensure Hub implements the usecase Broadcaster interface
var _ usecase.Broadcaster = (*Hub)(nil)

const maxConns = 10000

// Hub tracks connected clients per user and fans timeline events out to
// them. Clients for the same user all receive the same events.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	total   int

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Participants resolves the audience for typing events. Wired in
	// during server setup to avoid a constructor cycle with the usecase.
	Participants func(ctx context.Context, conversationID string) ([]string, error)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// Run owns the client registry until ctx is cancelled, then closes
// every connection and waits for their pumps to drain.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(ctx, client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// ServeConn adopts an upgraded connection for a user and starts its
// pumps. The connection lives until the peer disconnects or the hub
// shuts down.
func (h *Hub) ServeConn(ctx context.Context, conn *websocket.Conn, userID string) {
	client := newClient(h, conn, userID)
	pumpCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	client.start(pumpCtx, cancel)
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	all := make([]*Client, 0, h.total)
	for _, clients := range h.clients {
		for c := range clients {
			all = append(all, c)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	h.total = 0
	h.mu.Unlock()

	// Connection I/O happens outside the lock.
	for _, c := range all {
		c.close()
	}
	for _, c := range all {
		c.wait()
	}
}

func (h *Hub) addClient(ctx context.Context, c *Client) {
	h.mu.Lock()
	if h.total >= maxConns {
		h.mu.Unlock()
		log.Warnw(ctx, "socket connection limit reached", "limit", maxConns, "user_id", c.userID)
		c.close()
		return
	}
	if _, ok := h.clients[c.userID]; !ok {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.total++
	total := h.total
	h.mu.Unlock()

	log.Infow(ctx, "socket connected", "user_id", c.userID, "total", total)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	clients, ok := h.clients[c.userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, exists := clients[c]; !exists {
		h.mu.Unlock()
		return
	}
	delete(clients, c)
	h.total--
	if len(clients) == 0 {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	c.close()
}

func (h *Hub) handleEvent(ctx context.Context, c *Client, event IncomingEvent) {
	switch event.Type {
	case EventTyping:
		if event.ConversationID == "" || h.Participants == nil {
			return
		}
		userIDs, err := h.Participants(ctx, event.ConversationID)
		if err != nil {
			log.Warnw(ctx, "resolve typing audience",
				"conversation_id", event.ConversationID, "error", err)
			return
		}
		h.Typing(userIDs, event.ConversationID, c.userID, event.IsTyping)
	default:
		log.Warnw(ctx, "unexpected socket event", "type", event.Type, "user_id", c.userID)
	}
}

func (h *Hub) sendToUsers(userIDs []string, event OutgoingEvent) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(userIDs))
	for _, userID := range userIDs {
		for c := range h.clients[userID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(event) {
			log.Warnw(context.Background(), "socket send buffer full, dropping event",
				"user_id", c.userID, "type", event.Type)
		}
	}
}

// MessageReceived pushes a new or confirmed message to the given users.
func (h *Hub) MessageReceived(userIDs []string, conversationID string, msg timeline.DisplayMessage) {
	h.sendToUsers(userIDs, OutgoingEvent{
		Type:    EventMessageReceived,
		Payload: MessagePayload{ConversationID: conversationID, Message: msg},
	})
}

// MessageUpdated pushes an in-place change of an existing message.
func (h *Hub) MessageUpdated(userIDs []string, conversationID string, msg timeline.DisplayMessage) {
	h.sendToUsers(userIDs, OutgoingEvent{
		Type:    EventMessageUpdated,
		Payload: MessagePayload{ConversationID: conversationID, Message: msg},
	})
}

// StatusChanged pushes a delivery status transition for one message.
func (h *Hub) StatusChanged(userIDs []string, conversationID, messageID string, status models.MessageStatus) {
	h.sendToUsers(userIDs, OutgoingEvent{
		Type:    EventStatusChanged,
		Payload: StatusPayload{ConversationID: conversationID, MessageID: messageID, Status: status},
	})
}

// Typing relays a typing indicator to everyone but the typist.
func (h *Hub) Typing(userIDs []string, conversationID, userID string, isTyping bool) {
	others := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != userID {
			others = append(others, id)
		}
	}
	h.sendToUsers(others, OutgoingEvent{
		Type:    EventTyping,
		Payload: TypingPayload{ConversationID: conversationID, UserID: userID, IsTyping: isTyping},
	})
}
