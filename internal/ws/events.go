package ws

import (
	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
	"github.com/nguyentranbao-ct/chat-timeline/internal/timeline"
)

type EventType string

const (
	EventMessageReceived EventType = "message_received"
	EventMessageUpdated  EventType = "message_updated"
	EventStatusChanged   EventType = "status_changed"
	EventTyping          EventType = "typing"
)

// IncomingEvent is what a connected client may send over the socket.
// Only typing indicators are accepted; everything else goes through the
// HTTP API.
type IncomingEvent struct {
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
	IsTyping       bool      `json:"is_typing"`
}

// OutgoingEvent is the envelope pushed to clients.
type OutgoingEvent struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`
}

type MessagePayload struct {
	ConversationID string                  `json:"conversation_id"`
	Message        timeline.DisplayMessage `json:"message"`
}

type StatusPayload struct {
	ConversationID string               `json:"conversation_id"`
	MessageID      string               `json:"message_id"`
	Status         models.MessageStatus `json:"status"`
}

type TypingPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	IsTyping       bool   `json:"is_typing"`
}
