package usecase

import (
	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
	"github.com/nguyentranbao-ct/chat-timeline/internal/timeline"
)

// Broadcaster pushes timeline changes to connected clients. Implemented
// by the websocket hub; the usecase never talks to sockets directly.
type Broadcaster interface {
	MessageReceived(userIDs []string, conversationID string, msg timeline.DisplayMessage)
	MessageUpdated(userIDs []string, conversationID string, msg timeline.DisplayMessage)
	StatusChanged(userIDs []string, conversationID, messageID string, status models.MessageStatus)
}
