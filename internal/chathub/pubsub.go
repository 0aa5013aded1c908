package chathub

import (
	"encoding/json"
	"log"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
)

// StartPubSubListener subscribes to the shared event channel and feeds
// received envelopes into the hub loop. When the subscription drops, every
// remotely learned status is stale, so the presence board is pessimistically
// reset until fresh confirmations arrive.
func (m *Manager) StartPubSubListener() {
	go func() {
		pubsub := m.Storage.SubscribeEvents()
		if pubsub == nil {
			log.Println("hub: event bus unavailable, running local-only")
			return
		}
		defer pubsub.Close()

		ch := pubsub.Channel()
		for msg := range ch {
			var env models.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("hub: bad envelope on event channel: %v", err)
				continue
			}
			m.PubSubCh <- env
		}

		log.Println("hub: event subscription closed, marking presence board stale")
		m.Presence.Board.MarkAllOffline()
	}()
}
