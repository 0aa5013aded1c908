package models

import (
	"encoding/json"
	"time"
)

// Realtime event names. These are the wire-level tags exchanged with
// connected clients and published on the Redis event channel.
const (
	EventGetOnlineUsers  = "get-online-users"
	EventOnlineUsers     = "online-users"
	EventStatusChange    = "user-status-change"
	EventTyping          = "typing"
	EventStopTyping      = "stop-typing"
	EventNewMessage      = "new-message"
	EventNewMessageAlert = "new-message-alert"
	EventChatOpened      = "chat-opened"
	EventNewRequest      = "new-friend-request"
	EventRequestAccepted = "friend-request-accepted"
	EventRequestRejected = "friend-request-rejected"
)

// Event is the envelope for every realtime message, in both directions.
// Payload stays raw until the handler for the named event decodes it.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals payload into an envelope. Marshal failures are a
// programming error on our own payload types, so they surface as a nil
// payload rather than an error return.
func NewEvent(name string, payload any) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{Name: name}
	}
	return Event{Name: name, Payload: data}
}

// Envelope is what gets published on the Redis event channel: an event plus
// the set of users it should be delivered to.
type Envelope struct {
	Targets []string `json:"targets"`
	Event   Event    `json:"event"`
}

// StatusChangePayload notifies friends about a presence transition.
type StatusChangePayload struct {
	UserID     string    `json:"userId"`
	IsOnline   bool      `json:"isOnline"`
	LastActive time.Time `json:"lastActive"`
}

// TypingPayload is sent in both directions for typing and stop-typing.
type TypingPayload struct {
	ChatID string  `json:"chatId"`
	User   UserRef `json:"user"`
}

// NewMessagePayload carries a freshly persisted message to chat members.
type NewMessagePayload struct {
	ChatID  string   `json:"chatId"`
	Members []string `json:"members"`
	Message *Message `json:"message"`
}

// MessageAlertPayload triggers an unread counter increment on the client.
type MessageAlertPayload struct {
	ChatID string `json:"chatId"`
}

// ChatOpenedPayload clears the unread counter and marks messages read.
type ChatOpenedPayload struct {
	ChatID string `json:"chatId"`
}

// FriendRequestPayload accompanies the three friend-request events.
type FriendRequestPayload struct {
	RequestID uint    `json:"requestId"`
	Sender    UserRef `json:"sender"`
	Recipient UserRef `json:"recipient"`
	Status    string  `json:"status"`
}

// OnlineUsersPayload answers a get-online-users request with the online
// subset of the requester's friends.
type OnlineUsersPayload struct {
	Users []StatusChangePayload `json:"users"`
}
