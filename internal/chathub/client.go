package chathub

import "github.com/Garvit-Adlakha/chat-app-sub000/internal/models"

// Client is one live realtime connection for one user. It abstracts the
// underlying transport so the hub can manage WebSocket tabs and the
// Telegram bridge uniformly. A user may hold several clients at once.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string

	// GetSendChannel returns the channel the hub pushes outbound events
	// into. Events sent here preserve the emitter's call order.
	GetSendChannel() chan<- models.Event

	// Run starts the connection's read and write pumps.
	Run()
	// Close shuts the connection down and releases its channels.
	Close()
}

// Inbound pairs an event read off a connection with the connection itself,
// so request/response events can answer the asking handle only.
type Inbound struct {
	Client Client
	Event  models.Event
}
