package chathub

import (
	"log"
	"sync"
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/storage"
)

// Status is one entry of the presence mirror. LastActive survives the
// offline transition so "last seen" stays renderable.
type Status struct {
	IsOnline   bool
	LastActive time.Time
}

// StatusBoard is the presence mirror: user ID → last known status. Bulk
// updates are partial merges, never full replaces, so learning about a
// subset of users does not reset the rest.
type StatusBoard struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{statuses: make(map[string]Status)}
}

// Set records one user's status.
func (b *StatusBoard) Set(userID string, online bool, lastActive time.Time) {
	b.mu.Lock()
	b.statuses[userID] = Status{IsOnline: online, LastActive: lastActive}
	b.mu.Unlock()
}

// ApplyBulk merges a batch of statuses. Users absent from the batch keep
// their recorded status untouched.
func (b *StatusBoard) ApplyBulk(batch map[string]Status) {
	b.mu.Lock()
	for userID, st := range batch {
		b.statuses[userID] = st
	}
	b.mu.Unlock()
}

// Get returns the recorded status and whether anything is known.
func (b *StatusBoard) Get(userID string) (Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st, ok := b.statuses[userID]
	return st, ok
}

// MarkAllOffline pessimistically flips every known user offline, keeping
// their last-active timestamps. Used when the transport underneath drops
// and all remote knowledge is suspect.
func (b *StatusBoard) MarkAllOffline() {
	b.mu.Lock()
	for userID, st := range b.statuses {
		st.IsOnline = false
		b.statuses[userID] = st
	}
	b.mu.Unlock()
}

// Presence drives the per-user online/offline state machine and broadcasts
// transitions to the user's friends only; strangers never learn activity.
type Presence struct {
	Storage storage.Storage
	Board   *StatusBoard

	emitter interface {
		Emit(event string, targets []string, payload any)
	}
}

func NewPresence(s storage.Storage, emitter interface {
	Emit(event string, targets []string, payload any)
}) *Presence {
	return &Presence{Storage: s, Board: NewStatusBoard(), emitter: emitter}
}

// WentOnline handles the offline→online transition: first live connection
// for the user.
func (p *Presence) WentOnline(userID string) {
	p.transition(userID, true)
}

// WentOffline handles the online→offline transition: the user's last
// connection closed. No debounce beyond disconnect detection itself.
func (p *Presence) WentOffline(userID string) {
	p.transition(userID, false)
}

func (p *Presence) transition(userID string, online bool) {
	now := time.Now()

	if err := p.Storage.SetUserPresence(userID, online, now); err != nil {
		log.Printf("presence: persisting %s online=%v failed: %v", userID, online, err)
	}
	var err error
	if online {
		err = p.Storage.MarkOnline(userID)
	} else {
		err = p.Storage.MarkOffline(userID)
	}
	if err != nil {
		log.Printf("presence: online-set update for %s failed: %v", userID, err)
	}

	p.Board.Set(userID, online, now)

	friends, err := p.Storage.GetFriendIDs(userID)
	if err != nil {
		log.Printf("presence: friend lookup for %s failed: %v", userID, err)
		return
	}
	p.emitter.Emit(models.EventStatusChange, friends, models.StatusChangePayload{
		UserID:     userID,
		IsOnline:   online,
		LastActive: now,
	})
}

// Statuses answers a get-online-users request: the requester's friends with
// their current status, nobody else. The result also refreshes the board as
// a partial merge.
func (p *Presence) Statuses(userID string) ([]models.StatusChangePayload, error) {
	friends, err := p.Storage.GetFriendIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return nil, nil
	}

	online, err := p.Storage.OnlineAmong(friends)
	if err != nil {
		return nil, err
	}
	onlineSet := make(map[string]bool, len(online))
	for _, id := range online {
		onlineSet[id] = true
	}

	users, err := p.Storage.GetUsersByIDs(friends)
	if err != nil {
		return nil, err
	}

	statuses := make([]models.StatusChangePayload, 0, len(users))
	batch := make(map[string]Status, len(users))
	for _, u := range users {
		st := models.StatusChangePayload{
			UserID:     u.ID,
			IsOnline:   onlineSet[u.ID],
			LastActive: u.LastActive,
		}
		statuses = append(statuses, st)
		batch[u.ID] = Status{IsOnline: st.IsOnline, LastActive: st.LastActive}
	}
	p.Board.ApplyBulk(batch)

	return statuses, nil
}
