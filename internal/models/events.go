package models

// Event patterns emitted by the chat backend on its Kafka stream.
const (
	PatternMessageSent   = "message.sent"
	PatternMessageStatus = "message.status"
)

// StreamEvent is the top-level envelope of a Kafka event.
type StreamEvent struct {
	Pattern string          `json:"pattern"`
	Data    StreamEventData `json:"data"`
}

// StreamEventData is the payload of a stream event. Message fields are
// set for message.sent, status fields for message.status.
type StreamEventData struct {
	Message *RawMessage `json:"message,omitempty"`

	ConversationID string        `json:"conversation_id,omitempty"`
	MessageID      string        `json:"message_id,omitempty"`
	Status         MessageStatus `json:"status,omitempty"`
	UserID         string        `json:"user_id,omitempty"`
}
