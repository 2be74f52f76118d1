// Package timeline turns raw conversation messages into a render-ready
// sequence of display items, and tracks locally-sent messages from the
// moment the user hits send until the server confirms or rejects them.
//
// Everything except Outbox is pure: the same inputs always produce the
// same items, nothing blocks, and nothing is mutated.
package timeline

import (
	"encoding/json"
	"time"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

// ItemKind discriminates timeline items on the wire.
type ItemKind string

const (
	ItemKindMessage      ItemKind = "message"
	ItemKindDaySeparator ItemKind = "day_separator"
)

// Item is a single entry of an assembled timeline: either a
// DisplayMessage or a DaySeparator. The interface is sealed so
// consumers switch on the variants instead of sniffing fields.
type Item interface {
	Kind() ItemKind
	timelineItem()
}

var (
	_ Item = DisplayMessage{}
	_ Item = DaySeparator{}
)

// DisplayMessage is the render-ready projection of one RawMessage.
type DisplayMessage struct {
	ID     string        `json:"id"`
	Sender models.Sender `json:"sender"`

	Text      string    `json:"text"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`

	EditedAt *time.Time           `json:"edited_at,omitempty"`
	Status   models.MessageStatus `json:"status"`

	IsMine         bool `json:"is_mine"`
	ShowAvatar     bool `json:"show_avatar"`
	ShowSenderName bool `json:"show_sender_name"`
	IsFirstInGroup bool `json:"is_first_in_group"`
	IsLastInGroup  bool `json:"is_last_in_group"`
	IsEdited       bool `json:"is_edited"`
	IsFailed       bool `json:"is_failed"`

	FileName string `json:"file_name,omitempty"`
	FileSize string `json:"file_size,omitempty"`

	ReplyToID         *string           `json:"reply_to_id,omitempty"`
	Reactions         []models.Reaction `json:"reactions,omitempty"`
	ReadBy            []string          `json:"read_by,omitempty"`
	Pinned            bool              `json:"pinned"`
	Deleted           bool              `json:"deleted"`
	ForwardedFromName string            `json:"forwarded_from_name,omitempty"`
}

func (DisplayMessage) Kind() ItemKind { return ItemKindMessage }
func (DisplayMessage) timelineItem()  {}

func (m DisplayMessage) MarshalJSON() ([]byte, error) {
	type alias DisplayMessage
	return json.Marshal(struct {
		Type ItemKind `json:"type"`
		alias
	}{Type: ItemKindMessage, alias: alias(m)})
}

// DaySeparator marks a calendar-day boundary between two messages. It
// is not a message and carries no message fields.
type DaySeparator struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
}

func (DaySeparator) Kind() ItemKind { return ItemKindDaySeparator }
func (DaySeparator) timelineItem()  {}

func (s DaySeparator) MarshalJSON() ([]byte, error) {
	type alias DaySeparator
	return json.Marshal(struct {
		Type ItemKind `json:"type"`
		alias
	}{Type: ItemKindDaySeparator, alias: alias(s)})
}
