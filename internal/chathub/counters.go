package chathub

import (
	"sync"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/storage"
)

// Counters reconciles the cached unread hash against Postgres. The
// increment path in SendMessage is a latency optimization; the database
// read-state is the source of truth and this rewrite corrects any drift
// from missed events.
type Counters struct {
	Storage storage.Storage
}

func NewCounters(s storage.Storage) *Counters {
	return &Counters{Storage: s}
}

// Reconcile recomputes the user's unread counts from the database and
// replaces the Redis hash with them. Returns the authoritative counts.
func (c *Counters) Reconcile(userID string) (map[string]int64, error) {
	counts, err := c.Storage.CountUnreadFromDB(userID)
	if err != nil {
		return nil, err
	}
	if err := c.Storage.SetUnreadCounts(userID, counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// RequestCounter is the friend-request counter mirror: seeded from the
// authoritative pending list, nudged by events, and reconciled back to the
// list length whenever one is fetched. It never goes negative, since a
// decrement for a request that was never counted just means a missed event.
type RequestCounter struct {
	mu    sync.Mutex
	count int
}

// Seed initializes the counter from the authoritative pending count.
func (rc *RequestCounter) Seed(n int) {
	rc.mu.Lock()
	rc.count = n
	rc.mu.Unlock()
}

// Apply adjusts the counter for one friend-request event. Unrelated events
// are ignored.
func (rc *RequestCounter) Apply(event string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	switch event {
	case models.EventNewRequest:
		rc.count++
	case models.EventRequestAccepted, models.EventRequestRejected:
		if rc.count > 0 {
			rc.count--
		}
	}
}

// Value returns the current count.
func (rc *RequestCounter) Value() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.count
}
