package chathub

import (
	"sync"
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
)

type typingEntry struct {
	user  models.UserRef
	timer *time.Timer
}

// TypingTracker keeps the ephemeral per-chat, per-user typing flags. Each
// flag carries the typer's display name and expires after the configured
// timeout unless refreshed; onExpire fires so the hub can emit the
// stop-typing the silent client never sent.
type TypingTracker struct {
	mu       sync.Mutex
	chats    map[string]map[string]*typingEntry
	timeout  time.Duration
	onExpire func(chatID string, user models.UserRef)
}

func NewTypingTracker(timeout time.Duration, onExpire func(chatID string, user models.UserRef)) *TypingTracker {
	return &TypingTracker{
		chats:    make(map[string]map[string]*typingEntry),
		timeout:  timeout,
		onExpire: onExpire,
	}
}

// Set raises or refreshes the typing flag for (chat, user).
func (t *TypingTracker) Set(chatID string, user models.UserRef) {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.chats[chatID]
	if !ok {
		users = make(map[string]*typingEntry)
		t.chats[chatID] = users
	}

	if entry, ok := users[user.ID]; ok {
		entry.timer.Reset(t.timeout)
		entry.user = user
		return
	}

	entry := &typingEntry{user: user}
	entry.timer = time.AfterFunc(t.timeout, func() {
		t.expire(chatID, user.ID)
	})
	users[user.ID] = entry
}

// Clear lowers the flag and reports whether it was raised. Used for
// explicit stop-typing signals and the implicit stop when the user's
// message arrives in that chat.
func (t *TypingTracker) Clear(chatID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remove(chatID, userID) != nil
}

// Typists returns who is typing in the chat, excluding the given user so a
// client never renders its own indicator.
func (t *TypingTracker) Typists(chatID, excludeUserID string) []models.UserRef {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []models.UserRef
	for userID, entry := range t.chats[chatID] {
		if userID == excludeUserID {
			continue
		}
		out = append(out, entry.user)
	}
	return out
}

func (t *TypingTracker) expire(chatID, userID string) {
	t.mu.Lock()
	entry := t.remove(chatID, userID)
	t.mu.Unlock()

	if entry != nil && t.onExpire != nil {
		t.onExpire(chatID, entry.user)
	}
}

// remove must be called with the lock held. Returns the removed entry, nil
// when the flag was not set.
func (t *TypingTracker) remove(chatID, userID string) *typingEntry {
	users, ok := t.chats[chatID]
	if !ok {
		return nil
	}
	entry, ok := users[userID]
	if !ok {
		return nil
	}
	entry.timer.Stop()
	delete(users, userID)
	if len(users) == 0 {
		delete(t.chats, chatID)
	}
	return entry
}
