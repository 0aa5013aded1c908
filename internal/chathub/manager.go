package chathub

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/storage"
)

var (
	ErrNotAMember = fmt.Errorf("user is not a member of this chat")
)

// OfflineDeliverer receives events addressed to users with no live handle.
// The Telegram bridge implements it for linked accounts.
type OfflineDeliverer interface {
	Deliver(userID string, ev models.Event)
}

// Manager is the hub: it owns the connection registry, runs the dispatch
// loop and fans events out through the Redis bus so every instance delivers
// to its locally connected targets.
type Manager struct {
	Registry *Registry
	Presence *Presence
	Typing   *TypingTracker

	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Inbound

	Storage storage.Storage

	PubSubCh  chan models.Envelope
	deliverer OfflineDeliverer
}

func NewManager(s storage.Storage) *Manager {
	m := &Manager{
		Registry:     NewRegistry(),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan Inbound),
		Storage:      s,
		PubSubCh:     make(chan models.Envelope, 64),
	}
	m.Presence = NewPresence(s, m)
	m.Typing = NewTypingTracker(config.TypingTimeout, m.typingExpired)
	return m
}

// SetOfflineDeliverer installs the fallback transport for offline targets.
func (m *Manager) SetOfflineDeliverer(d OfflineDeliverer) {
	m.deliverer = d
}

// Run is the hub's main loop. Handlers execute to completion before the
// next event is processed; individual connections pump independently.
func (m *Manager) Run() {
	m.StartPubSubListener()

	for {
		select {
		case client := <-m.RegisterCh:
			if first := m.Registry.Register(client); first {
				m.Presence.WentOnline(client.GetUserID())
			}

		case client := <-m.UnregisterCh:
			found, last := m.Registry.Unregister(client)
			if found {
				client.Close()
			}
			if last {
				m.Presence.WentOffline(client.GetUserID())
			}

		case in := <-m.IncomingCh:
			m.handleInbound(in)

		case env := <-m.PubSubCh:
			m.deliverLocal(env)
		}
	}
}

// Emit fans an event out to the target users on every instance. Delivery is
// at-most-once and best-effort; targets without connections are skipped
// silently. Publishing failures fall back to the hub's own delivery queue so
// a Redis blip degrades rather than drops everything. Client channels are
// only ever written (and closed) by the hub goroutine.
func (m *Manager) Emit(event string, targets []string, payload any) {
	if len(targets) == 0 {
		return
	}
	env := models.Envelope{Targets: targets, Event: models.NewEvent(event, payload)}
	if err := m.Storage.PublishEvent(env); err != nil {
		log.Printf("hub: publish %s failed, delivering locally: %v", event, err)
		select {
		case m.PubSubCh <- env:
		default:
			log.Printf("hub: dropping %s, delivery queue full", event)
		}
	}
}

// deliverLocal pushes an envelope to every locally resolved handle. Runs on
// the hub goroutine only. A full send buffer means a stuck connection; the
// event is dropped for it.
func (m *Manager) deliverLocal(env models.Envelope) {
	for _, target := range env.Targets {
		handles := m.Registry.Resolve(target)
		if len(handles) == 0 {
			m.deliverOffline(target, env.Event)
			continue
		}
		for _, c := range handles {
			select {
			case c.GetSendChannel() <- env.Event:
			default:
				log.Printf("hub: dropping %s for %s, send buffer full", env.Event.Name, target)
			}
		}
	}
}

// deliverOffline hands an event to the fallback transport, but only after
// the shared online set confirms the user has no handle on any instance.
// Another instance's hub delivers to its own connections.
func (m *Manager) deliverOffline(userID string, ev models.Event) {
	if m.deliverer == nil {
		return
	}
	online, err := m.Storage.OnlineAmong([]string{userID})
	if err != nil {
		log.Printf("hub: online check for %s failed, skipping offline delivery: %v", userID, err)
		return
	}
	if len(online) > 0 {
		return
	}
	m.deliverer.Deliver(userID, ev)
}

// handleInbound dispatches one event read off a connection. Malformed
// payloads are logged and ignored so one bad client cannot wedge the loop.
func (m *Manager) handleInbound(in Inbound) {
	userID := in.Client.GetUserID()

	switch in.Event.Name {
	case models.EventTyping:
		var p models.TypingPayload
		if err := json.Unmarshal(in.Event.Payload, &p); err != nil || p.ChatID == "" {
			log.Printf("hub: ignoring malformed typing payload from %s", userID)
			return
		}
		m.handleTyping(userID, p)

	case models.EventStopTyping:
		var p models.TypingPayload
		if err := json.Unmarshal(in.Event.Payload, &p); err != nil || p.ChatID == "" {
			log.Printf("hub: ignoring malformed stop-typing payload from %s", userID)
			return
		}
		m.handleStopTyping(userID, p.ChatID)

	case models.EventNewMessage:
		var p models.NewMessagePayload
		if err := json.Unmarshal(in.Event.Payload, &p); err != nil || p.ChatID == "" || p.Message == nil {
			log.Printf("hub: ignoring malformed new-message payload from %s", userID)
			return
		}
		if _, err := m.SendMessage(userID, p.ChatID, p.Message.Content, p.Message.Attachments); err != nil {
			log.Printf("hub: new-message from %s rejected: %v", userID, err)
		}

	case models.EventChatOpened:
		var p models.ChatOpenedPayload
		if err := json.Unmarshal(in.Event.Payload, &p); err != nil || p.ChatID == "" {
			log.Printf("hub: ignoring malformed chat-opened payload from %s", userID)
			return
		}
		if err := m.OpenChat(userID, p.ChatID); err != nil {
			log.Printf("hub: chat-opened from %s rejected: %v", userID, err)
			return
		}
		m.Registry.SetOpenChat(in.Client, p.ChatID)

	case models.EventGetOnlineUsers:
		m.handleGetOnlineUsers(in.Client)

	default:
		log.Printf("hub: unknown event %q from %s", in.Event.Name, userID)
	}
}

func (m *Manager) handleTyping(userID string, p models.TypingPayload) {
	chat, err := m.Storage.GetChatByID(p.ChatID)
	if err != nil || !chat.HasMember(userID) {
		return
	}

	// The typer's identity comes from the authenticated connection, never
	// from the payload. Only the display name is taken as sent.
	user := models.UserRef{ID: userID, Name: p.User.Name}
	m.Typing.Set(p.ChatID, user)
	m.Emit(models.EventTyping, chat.OtherMembers(userID), models.TypingPayload{ChatID: p.ChatID, User: user})
}

func (m *Manager) handleStopTyping(userID, chatID string) {
	chat, err := m.Storage.GetChatByID(chatID)
	if err != nil || !chat.HasMember(userID) {
		return
	}
	if m.Typing.Clear(chatID, userID) {
		m.Emit(models.EventStopTyping, chat.OtherMembers(userID), models.TypingPayload{
			ChatID: chatID,
			User:   models.UserRef{ID: userID},
		})
	}
}

// typingExpired runs when a typing flag outlives config.TypingTimeout
// without a refresh: the hub emits the stop-typing the silent client never
// sent.
func (m *Manager) typingExpired(chatID string, user models.UserRef) {
	chat, err := m.Storage.GetChatByID(chatID)
	if err != nil {
		return
	}
	m.Emit(models.EventStopTyping, chat.OtherMembers(user.ID), models.TypingPayload{ChatID: chatID, User: user})
}

// SendMessage persists a message and fans it out. Shared by the WebSocket
// path and the HTTP handler. The sender's typing flag is cleared implicitly.
// Members currently viewing the chat read the message as it arrives; only
// the rest get an unread bump plus an alert event.
func (m *Manager) SendMessage(senderID, chatID, content string, attachments []string) (*models.Message, error) {
	chat, err := m.Storage.GetChatByID(chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(senderID) {
		return nil, ErrNotAMember
	}

	readers := []string{senderID}
	var alertTargets []string
	for _, member := range chat.OtherMembers(senderID) {
		if m.Registry.IsViewing(member, chatID) {
			readers = append(readers, member)
		} else {
			alertTargets = append(alertTargets, member)
		}
	}

	msg := &models.Message{
		ChatID:      chatID,
		SenderID:    senderID,
		Content:     content,
		Attachments: attachments,
		ReadBy:      readers,
	}
	if err := m.Storage.SaveMessage(msg); err != nil {
		return nil, err
	}
	// Keep the chat list sorted by latest activity.
	if err := m.Storage.TouchChat(chatID); err != nil {
		log.Printf("hub: touching chat %s failed: %v", chatID, err)
	}

	// A message from the typer is an implicit stop-typing.
	if m.Typing.Clear(chatID, senderID) {
		m.Emit(models.EventStopTyping, chat.OtherMembers(senderID), models.TypingPayload{
			ChatID: chatID,
			User:   models.UserRef{ID: senderID},
		})
	}

	m.Emit(models.EventNewMessage, chat.Members, models.NewMessagePayload{
		ChatID:  chatID,
		Members: chat.Members,
		Message: msg,
	})

	for _, member := range alertTargets {
		if err := m.Storage.IncrUnread(member, chatID); err != nil {
			log.Printf("hub: unread bump for %s/%s failed: %v", member, chatID, err)
		}
	}
	m.Emit(models.EventNewMessageAlert, alertTargets, models.MessageAlertPayload{ChatID: chatID})

	return msg, nil
}

// OpenChat marks the chat read for the user and zeroes its unread counter.
func (m *Manager) OpenChat(userID, chatID string) error {
	chat, err := m.Storage.GetChatByID(chatID)
	if err != nil {
		return err
	}
	if !chat.HasMember(userID) {
		return ErrNotAMember
	}
	if err := m.Storage.MarkChatRead(chatID, userID); err != nil {
		return err
	}
	return m.Storage.ClearUnread(userID, chatID)
}

// handleGetOnlineUsers answers the asking connection only; other tabs keep
// current through subsequent status-change broadcasts.
func (m *Manager) handleGetOnlineUsers(c Client) {
	statuses, err := m.Presence.Statuses(c.GetUserID())
	if err != nil {
		log.Printf("hub: get-online-users for %s failed: %v", c.GetUserID(), err)
		return
	}
	ev := models.NewEvent(models.EventOnlineUsers, models.OnlineUsersPayload{Users: statuses})
	select {
	case c.GetSendChannel() <- ev:
	default:
		log.Printf("hub: dropping online-users reply for %s", c.GetUserID())
	}
}
