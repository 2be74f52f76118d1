package models

import "time"

// Participant is a member of a conversation as reported by the chat backend.
type Participant struct {
	UserID string `json:"user_id" bson:"user_id"`
	Name   string `json:"name" bson:"name"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Role   string `json:"role,omitempty" bson:"role,omitempty"`
}

// Conversation is a direct or group chat.
type Conversation struct {
	ID            string        `json:"id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	IsGroup       bool          `json:"is_group" bson:"is_group"`
	Participants  []Participant `json:"participants" bson:"participants"`
	LastMessageAt time.Time     `json:"last_message_at" bson:"last_message_at"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
}

// ParticipantIDs returns the user IDs of all members.
func (c *Conversation) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
