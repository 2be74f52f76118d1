package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

// EventHandler dispatches decoded stream events to the usecase layer.
type EventHandler interface {
	HandleEvent(ctx context.Context, payload []byte) error
}

// ConversationApplier is the slice of the conversation usecase the
// consumer needs.
type ConversationApplier interface {
	ApplyServerMessage(ctx context.Context, msg models.RawMessage) error
	ApplyStatusUpdate(ctx context.Context, conversationID, messageID string, status models.MessageStatus) error
}

type eventHandler struct {
	conversations ConversationApplier
}

func NewEventHandler(conversations ConversationApplier) EventHandler {
	return &eventHandler{conversations: conversations}
}

func (h *eventHandler) HandleEvent(ctx context.Context, payload []byte) error {
	var event models.StreamEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal stream event: %w", err)
	}

	switch event.Pattern {
	case models.PatternMessageSent:
		if event.Data.Message == nil {
			return fmt.Errorf("%s event without message body", event.Pattern)
		}
		log.Infow(ctx, "Processing incoming message",
			"conversation_id", event.Data.Message.ConversationID,
			"message_id", event.Data.Message.ID)
		return h.conversations.ApplyServerMessage(ctx, *event.Data.Message)

	case models.PatternMessageStatus:
		log.Infow(ctx, "Processing status update",
			"conversation_id", event.Data.ConversationID,
			"message_id", event.Data.MessageID,
			"status", event.Data.Status)
		return h.conversations.ApplyStatusUpdate(ctx,
			event.Data.ConversationID,
			event.Data.MessageID,
			event.Data.Status)

	default:
		log.Infow(ctx, "Ignoring unhandled event", "pattern", event.Pattern)
		return nil
	}
}
