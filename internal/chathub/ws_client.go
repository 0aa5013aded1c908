package chathub

import (
	"encoding/json"
	"log"
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient is the browser-facing Client implementation: one
// instance per open tab.
type WebSocketClient struct {
	UserID string
	Conn   *websocket.Conn
	Hub    *Manager
	Send   chan models.Event
}

func (c *WebSocketClient) GetUserID() string                   { return c.UserID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Event { return c.Send }

// Run starts the pumps for this connection.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close shuts the write side down; the read pump stops when the connection
// closes underneath it.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error for %s: %v", c.UserID, err)
			}
			break
		}

		var ev models.Event
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Name == "" {
			log.Printf("ws: skipping undecodable frame from %s", c.UserID)
			continue
		}

		c.Hub.IncomingCh <- Inbound{Client: c, Event: ev}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("ws: encoding %s for %s failed: %v", ev.Name, c.UserID, err)
				w.Close()
				continue
			}
			w.Write(data)

			// Drain whatever queued up while we held the writer.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				next := <-c.Send
				w.Write([]byte{'\n'})
				extra, _ := json.Marshal(next)
				w.Write(extra)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
