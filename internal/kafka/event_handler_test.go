package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

type fakeApplier struct {
	messages []models.RawMessage
	statuses []models.MessageStatus
}

func (f *fakeApplier) ApplyServerMessage(_ context.Context, msg models.RawMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeApplier) ApplyStatusUpdate(_ context.Context, _, _ string, status models.MessageStatus) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func TestHandleEvent(t *testing.T) {
	t.Parallel()

	t.Run("message sent", func(t *testing.T) {
		t.Parallel()
		applier := &fakeApplier{}
		handler := NewEventHandler(applier)

		payload := []byte(`{
			"pattern": "message.sent",
			"data": {
				"message": {
					"id": "m1",
					"conversation_id": "c1",
					"sender": {"id": "u1", "name": "Alice"},
					"content": "hello",
					"content_type": "text",
					"created_at": "2025-03-08T10:00:00Z",
					"status": "sent"
				}
			}
		}`)

		require.NoError(t, handler.HandleEvent(context.Background(), payload))
		require.Len(t, applier.messages, 1)
		msg := applier.messages[0]
		assert.Equal(t, "m1", msg.ID)
		assert.Equal(t, "c1", msg.ConversationID)
		assert.Equal(t, "Alice", msg.Sender.Name)
		assert.Equal(t, time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC), msg.CreatedAt)
	})

	t.Run("status update", func(t *testing.T) {
		t.Parallel()
		applier := &fakeApplier{}
		handler := NewEventHandler(applier)

		payload := []byte(`{
			"pattern": "message.status",
			"data": {"conversation_id": "c1", "message_id": "m1", "status": "read"}
		}`)

		require.NoError(t, handler.HandleEvent(context.Background(), payload))
		require.Len(t, applier.statuses, 1)
		assert.Equal(t, models.StatusRead, applier.statuses[0])
	})

	t.Run("unknown pattern is ignored", func(t *testing.T) {
		t.Parallel()
		applier := &fakeApplier{}
		handler := NewEventHandler(applier)

		require.NoError(t, handler.HandleEvent(context.Background(), []byte(`{"pattern":"user.joined","data":{}}`)))
		assert.Empty(t, applier.messages)
		assert.Empty(t, applier.statuses)
	})

	t.Run("malformed payload errors", func(t *testing.T) {
		t.Parallel()
		handler := NewEventHandler(&fakeApplier{})
		assert.Error(t, handler.HandleEvent(context.Background(), []byte(`{not json`)))
	})

	t.Run("message sent without body errors", func(t *testing.T) {
		t.Parallel()
		handler := NewEventHandler(&fakeApplier{})
		assert.Error(t, handler.HandleEvent(context.Background(), []byte(`{"pattern":"message.sent","data":{}}`)))
	})
}
