package models

import "time"

// ContentType tags the payload carried by a message.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeFile  ContentType = "file"
	ContentTypeAudio ContentType = "audio"
	ContentTypeVideo ContentType = "video"
)

// MessageStatus is the delivery state of a message. The set is closed:
// every switch over it must handle all five constants.
type MessageStatus string

const (
	StatusSending   MessageStatus = "sending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusFailed    MessageStatus = "failed"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case StatusSending, StatusSent, StatusDelivered, StatusRead, StatusFailed:
		return true
	}
	return false
}

// Sender identifies the author of a message. IDs are strings end-to-end;
// upstream systems serialize them inconsistently, so they are never
// compared as anything but strings.
type Sender struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Role   string `json:"role,omitempty" bson:"role,omitempty"`
}

// FileInfo describes an attachment for file-typed content.
type FileInfo struct {
	URL  string `json:"url" bson:"url"`
	Name string `json:"name" bson:"name"`
	Size int64  `json:"size" bson:"size"`
}

// Reaction is a single emoji reaction left on a message.
type Reaction struct {
	UserID    string    `json:"user_id" bson:"user_id"`
	Emoji     string    `json:"emoji" bson:"emoji"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ForwardedFrom carries provenance for a forwarded message.
type ForwardedFrom struct {
	MessageID  string `json:"message_id" bson:"message_id"`
	SenderID   string `json:"sender_id" bson:"sender_id"`
	SenderName string `json:"sender_name" bson:"sender_name"`
}

// RawMessage is the server-authoritative message record as delivered by
// the chat backend. The timeline core consumes it read-only.
type RawMessage struct {
	ID             string         `json:"id" bson:"_id"`
	ConversationID string         `json:"conversation_id" bson:"conversation_id"`
	Sender         Sender         `json:"sender" bson:"sender"`
	ContentType    ContentType    `json:"content_type" bson:"content_type"`
	Content        string         `json:"content" bson:"content"`
	File           *FileInfo      `json:"file,omitempty" bson:"file,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	EditedAt       *time.Time     `json:"edited_at,omitempty" bson:"edited_at,omitempty"`
	Status         MessageStatus  `json:"status" bson:"status"`
	ReplyToID      *string        `json:"reply_to_id,omitempty" bson:"reply_to_id,omitempty"`
	Reactions      []Reaction     `json:"reactions,omitempty" bson:"reactions,omitempty"`
	ReadBy         []string       `json:"read_by,omitempty" bson:"read_by,omitempty"`
	Pinned         bool           `json:"pinned" bson:"pinned"`
	Deleted        bool           `json:"deleted" bson:"deleted"`
	ForwardedFrom  *ForwardedFrom `json:"forwarded_from,omitempty" bson:"forwarded_from,omitempty"`
	ClientGenID    string         `json:"client_gen_id,omitempty" bson:"client_gen_id,omitempty"`
}

// OutgoingMessage is the payload sent upstream when a user sends a message.
type OutgoingMessage struct {
	ConversationID string      `json:"conversation_id" validate:"required"`
	SenderID       string      `json:"sender_id" validate:"required"`
	Content        string      `json:"content" validate:"required"`
	ContentType    ContentType `json:"content_type"`
	ClientGenID    string      `json:"client_gen_id"`
	ReplyToID      *string     `json:"reply_to_id,omitempty"`
}
