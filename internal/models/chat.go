package models

import (
	"errors"
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrDirectChatMembers = errors.New("a direct chat must have exactly two members")
	ErrCreatorNotMember  = errors.New("the group creator must be a member")
)

// Chat is either a two-party direct conversation or a named group.
// Members holds user IDs; for direct chats it is always exactly two.
type Chat struct {
	ID        string         `gorm:"primaryKey" json:"_id"`
	IsGroup   bool           `json:"isGroupChat"`
	Name      string         `json:"name"`
	IconURL   string         `json:"icon"`
	CreatorID string         `gorm:"index" json:"creator"`
	Members   pq.StringArray `gorm:"type:text[]" json:"members"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID and enforces the membership invariants.
func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if !c.IsGroup && len(c.Members) != config.DirectChatSize {
		return ErrDirectChatMembers
	}
	if c.IsGroup && !c.HasMember(c.CreatorID) {
		return ErrCreatorNotMember
	}
	return nil
}

// ChatSummary is one row of a user's chat list: the chat, its most recent
// message (nil for a fresh chat) and the viewer's unread count.
type ChatSummary struct {
	Chat        Chat     `json:"chat"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	Unread      int64    `json:"unread"`
}

// HasMember reports whether the given user belongs to the chat.
func (c *Chat) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// OtherMembers returns all member IDs except the given one.
func (c *Chat) OtherMembers(userID string) []string {
	others := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		if m != userID {
			others = append(others, m)
		}
	}
	return others
}
