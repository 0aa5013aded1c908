package models

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var ErrEmptyMessage = errors.New("a message needs content or at least one attachment")

// Message belongs to exactly one chat and one sender. Attachments are URLs
// returned by the upload endpoint. ReadBy collects the IDs of users who have
// opened the chat since the message arrived.
type Message struct {
	gorm.Model

	ChatID   string `gorm:"type:uuid;not null;index:idx_chat_msg" json:"chat"`
	SenderID string `gorm:"not null;index:idx_chat_msg" json:"sender"`

	Content     string         `gorm:"type:text" json:"content"`
	Attachments pq.StringArray `gorm:"type:text[];default:'{}'" json:"attachments"`
	ReadBy      pq.StringArray `gorm:"type:text[];default:'{}'" json:"readBy"`
}

// BeforeCreate rejects messages with neither content nor attachments.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Content == "" && len(m.Attachments) == 0 {
		return ErrEmptyMessage
	}
	return nil
}

// ReadByUser reports whether the given user has already read the message.
func (m *Message) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
