package models

import "gorm.io/gorm"

// Friend request states. Accepted requests imply a mutual friendship that
// presence visibility is filtered against.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FriendRequest is a directional edge between two users.
type FriendRequest struct {
	gorm.Model

	SenderID    string `gorm:"not null;index:idx_request_pair" json:"sender"`
	RecipientID string `gorm:"not null;index:idx_request_pair" json:"recipient"`
	Status      string `gorm:"not null;default:pending" json:"status"`
}
