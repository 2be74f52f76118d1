package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

func TestMapMessageTextResolution(t *testing.T) {
	t.Parallel()

	ctx := ConversationContext{IsGroup: true, CurrentUserID: "me"}
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	t.Run("content wins", func(t *testing.T) {
		msg := msgAt("x", at)
		msg.Content = "hello"
		assert.Equal(t, "hello", MapMessage(msg, nil, nil, ctx).Text)
	})

	t.Run("file name when content empty", func(t *testing.T) {
		msg := msgAt("x", at)
		msg.Content = ""
		msg.ContentType = models.ContentTypeFile
		msg.File = &models.FileInfo{URL: "https://cdn/x.pdf", Name: "report.pdf", Size: 2048}
		out := MapMessage(msg, nil, nil, ctx)
		assert.Equal(t, "report.pdf", out.Text)
		assert.Equal(t, "report.pdf", out.FileName)
		assert.Equal(t, "2.0 KB", out.FileSize)
	})

	t.Run("attachment without size has no size label", func(t *testing.T) {
		msg := msgAt("x", at)
		msg.Content = "see attachment"
		msg.ContentType = models.ContentTypeFile
		msg.File = &models.FileInfo{URL: "https://cdn/y.png", Name: "y.png"}
		out := MapMessage(msg, nil, nil, ctx)
		assert.Equal(t, "y.png", out.FileName)
		assert.Empty(t, out.FileSize)
	})

	t.Run("empty otherwise", func(t *testing.T) {
		msg := msgAt("x", at)
		msg.Content = ""
		msg.ContentType = models.ContentTypeImage
		assert.Equal(t, "", MapMessage(msg, nil, nil, ctx).Text)
	})
}

func TestMapMessageIdentityAndStatus(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	t.Run("is mine by string identifier", func(t *testing.T) {
		msg := msgAt("42", at)
		out := MapMessage(msg, nil, nil, ConversationContext{CurrentUserID: "42"})
		assert.True(t, out.IsMine)

		out = MapMessage(msg, nil, nil, ConversationContext{CurrentUserID: "421"})
		assert.False(t, out.IsMine)
	})

	t.Run("failed derives from status", func(t *testing.T) {
		msg := msgAt("x", at)
		msg.Status = models.StatusFailed
		out := MapMessage(msg, nil, nil, ConversationContext{CurrentUserID: "me"})
		assert.True(t, out.IsFailed)
		assert.Equal(t, models.StatusFailed, out.Status)
	})

	t.Run("edited derives from edit timestamp", func(t *testing.T) {
		msg := msgAt("x", at)
		editedAt := at.Add(time.Minute)
		msg.EditedAt = &editedAt
		out := MapMessage(msg, nil, nil, ConversationContext{CurrentUserID: "me"})
		assert.True(t, out.IsEdited)
	})

	t.Run("missing sender falls back to placeholder", func(t *testing.T) {
		msg := msgAt("x", at)
		msg.Sender = models.Sender{}
		out := MapMessage(msg, nil, nil, ConversationContext{CurrentUserID: "me"})
		assert.Equal(t, "Unknown", out.Sender.Name)
	})

	t.Run("forwarded provenance keeps only the sender name", func(t *testing.T) {
		msg := msgAt("x", at)
		msg.ForwardedFrom = &models.ForwardedFrom{
			MessageID:  "orig-1",
			SenderID:   "orig-sender",
			SenderName: "Alice",
		}
		out := MapMessage(msg, nil, nil, ConversationContext{CurrentUserID: "me"})
		assert.Equal(t, "Alice", out.ForwardedFromName)
	})
}

func TestMapMessagePassThrough(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	replyTo := "m-1"
	msg := msgAt("x", at)
	msg.ReplyToID = &replyTo
	msg.Reactions = []models.Reaction{{UserID: "y", Emoji: "👍", CreatedAt: at}}
	msg.ReadBy = []string{"y", "z"}
	msg.Pinned = true

	out := MapMessage(msg, nil, nil, ConversationContext{IsGroup: true, CurrentUserID: "me"})
	assert.Equal(t, &replyTo, out.ReplyToID)
	assert.Len(t, out.Reactions, 1)
	assert.Equal(t, []string{"y", "z"}, out.ReadBy)
	assert.True(t, out.Pinned)
	assert.Equal(t, "10:00 AM", out.Time)
}
