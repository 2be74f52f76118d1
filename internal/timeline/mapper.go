package timeline

import (
	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

// unknownSenderName replaces a missing or malformed sender so that one
// corrupt record cannot break assembly of the whole list.
const unknownSenderName = "Unknown"

// ConversationContext is what the mapper needs to know about the
// conversation a message belongs to.
type ConversationContext struct {
	IsGroup       bool
	CurrentUserID string
}

// MapMessage projects one RawMessage onto its display form, using its
// chronological neighbors to compute grouping decorations.
func MapMessage(msg models.RawMessage, predecessor, successor *models.RawMessage, ctx ConversationContext) DisplayMessage {
	flags := Classify(msg, predecessor, successor, ctx.IsGroup, ctx.CurrentUserID)

	sender := msg.Sender
	if sender.Name == "" {
		sender.Name = unknownSenderName
	}

	out := DisplayMessage{
		ID:        msg.ID,
		Sender:    sender,
		Text:      resolveText(msg),
		Time:      FormatTime(msg.CreatedAt),
		CreatedAt: msg.CreatedAt,
		EditedAt:  msg.EditedAt,
		Status:    msg.Status,

		IsMine:         msg.Sender.ID == ctx.CurrentUserID,
		ShowAvatar:     flags.ShowAvatar,
		ShowSenderName: flags.ShowSenderName,
		IsFirstInGroup: flags.IsFirstInGroup,
		IsLastInGroup:  flags.IsLastInGroup,
		IsEdited:       msg.EditedAt != nil,
		IsFailed:       msg.Status == models.StatusFailed,

		ReplyToID: msg.ReplyToID,
		Reactions: msg.Reactions,
		ReadBy:    msg.ReadBy,
		Pinned:    msg.Pinned,
		Deleted:   msg.Deleted,
	}

	if msg.File != nil {
		out.FileName = msg.File.Name
		if msg.File.Size > 0 {
			out.FileSize = FormatFileSize(msg.File.Size)
		}
	}

	// Only the original sender's name survives from forwarded provenance.
	if msg.ForwardedFrom != nil {
		out.ForwardedFromName = msg.ForwardedFrom.SenderName
	}

	return out
}

func resolveText(msg models.RawMessage) string {
	if msg.Content != "" {
		return msg.Content
	}
	if msg.ContentType == models.ContentTypeFile && msg.File != nil {
		return msg.File.Name
	}
	return ""
}
