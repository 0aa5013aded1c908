package chathub_test

import (
	"sync"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
)

// mockClient is a Client backed by a buffered channel, so tests can inspect
// what the hub delivered without a real transport.
type mockClient struct {
	userID      string
	RecvChannel chan models.Event

	mu     sync.Mutex
	closed bool
}

func newMockClient(userID string) *mockClient {
	return &mockClient{
		userID:      userID,
		RecvChannel: make(chan models.Event, 16),
	}
}

func (c *mockClient) GetUserID() string                   { return c.userID }
func (c *mockClient) GetSendChannel() chan<- models.Event { return c.RecvChannel }
func (c *mockClient) Run()                                {}

func (c *mockClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *mockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
