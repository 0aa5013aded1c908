package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account. Users are never hard-deleted;
// Deactivated blocks login while keeping message history intact.
type User struct {
	ID           string `gorm:"primaryKey" json:"_id"`
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	AvatarURL    string `json:"avatar"`

	IsOnline   bool      `json:"isOnline"`
	LastActive time.Time `json:"lastActive"`

	// TelegramID links the account to the Telegram bridge. Nil until the
	// user completes the /link flow.
	TelegramID *string `gorm:"uniqueIndex" json:"-"`

	Deactivated bool `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate is a GORM hook that assigns a UUID if the ID is unset.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// UserRef is the short projection embedded in realtime payloads.
type UserRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Ref returns the realtime projection of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name}
}
