package telegram

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/chathub"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/storage"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type outbound struct {
	chatID int64
	text   string
}

// Bridge forwards realtime events to linked Telegram accounts while the
// user has no live WebSocket handle. It implements chathub.OfflineDeliverer
// and is registered with the hub at startup.
type Bridge struct {
	bot     *tgbotapi.BotAPI
	storage storage.Storage

	mu       sync.RWMutex
	linked   map[string]int64                   // user ID -> Telegram chat ID
	counters map[string]*chathub.RequestCounter // user ID -> pending-request badge

	sendCh chan outbound
}

// NewBridge connects the bot and loads existing account links.
func NewBridge(token string, s storage.Storage) (*Bridge, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: bot init failed: %w", err)
	}

	b := &Bridge{
		bot:      bot,
		storage:  s,
		linked:   make(map[string]int64),
		counters: make(map[string]*chathub.RequestCounter),
		sendCh:   make(chan outbound, 128),
	}

	users, err := s.GetLinkedUsers()
	if err != nil {
		return nil, fmt.Errorf("telegram: loading linked users: %w", err)
	}
	for _, u := range users {
		if u.TelegramID == nil {
			continue
		}
		chatID, err := strconv.ParseInt(*u.TelegramID, 10, 64)
		if err != nil {
			continue
		}
		b.linked[u.ID] = chatID
	}
	log.Printf("telegram: bridge up, %d linked accounts", len(b.linked))

	return b, nil
}

// Deliver receives events the hub could not hand to any live connection.
// Only message and friend-request events are worth a Telegram ping; typing
// and presence churn is dropped.
func (b *Bridge) Deliver(userID string, ev models.Event) {
	b.mu.RLock()
	chatID, ok := b.linked[userID]
	b.mu.RUnlock()
	if !ok {
		return
	}

	var text string
	switch ev.Name {
	case models.EventNewMessage:
		var p models.NewMessagePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.Message == nil {
			return
		}
		sender := p.Message.SenderID
		if u, err := b.storage.GetUserByID(sender); err == nil {
			sender = u.Name
		}
		body := p.Message.Content
		if body == "" {
			body = fmt.Sprintf("%d attachment(s)", len(p.Message.Attachments))
		}
		text = fmt.Sprintf("💬 %s: %s", sender, body)

	case models.EventNewRequest, models.EventRequestAccepted, models.EventRequestRejected:
		var p models.FriendRequestPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		// Outcome events reach the sender too, but only the recipient's
		// badge tracks the pending list.
		if p.Recipient.ID != userID {
			return
		}
		counter := b.counterFor(userID)
		counter.Apply(ev.Name)
		if ev.Name != models.EventNewRequest {
			return
		}
		text = fmt.Sprintf("✉️ Friend request from %s (%d pending)", p.Sender.Name, counter.Value())

	default:
		return
	}

	select {
	case b.sendCh <- outbound{chatID: chatID, text: text}:
	default:
		log.Printf("telegram: dropping %s for %s, send queue full", ev.Name, userID)
	}
}

// counterFor lazily seeds a user's badge from the authoritative pending
// list.
func (b *Bridge) counterFor(userID string) *chathub.RequestCounter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.counters[userID]; ok {
		return c
	}
	c := &chathub.RequestCounter{}
	if pending, err := b.storage.GetPendingRequests(userID); err == nil {
		c.Seed(len(pending))
	}
	b.counters[userID] = c
	return c
}

// Run pumps outbound alerts and handles bot commands. Blocks; run it in
// its own goroutine.
func (b *Bridge) Run() {
	go b.writePump()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range b.bot.GetUpdatesChan(u) {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		switch update.Message.Command() {
		case "start":
			b.reply(update.Message.Chat.ID, "Link your chat account with /link <email> to receive alerts here while you are offline.")
		case "link":
			b.handleLink(update.Message)
		case "unlink":
			b.handleUnlink(update.Message)
		}
	}
}

func (b *Bridge) handleLink(msg *tgbotapi.Message) {
	email := strings.TrimSpace(msg.CommandArguments())
	if email == "" {
		b.reply(msg.Chat.ID, "Usage: /link <email>")
		return
	}

	user, err := b.storage.GetUserByEmail(email)
	if err != nil {
		b.reply(msg.Chat.ID, "No account found for that email.")
		return
	}

	tgID := strconv.FormatInt(msg.Chat.ID, 10)
	if err := b.storage.LinkTelegram(user.ID, tgID); err != nil {
		b.reply(msg.Chat.ID, "Linking failed, try again later.")
		return
	}

	b.mu.Lock()
	b.linked[user.ID] = msg.Chat.ID
	b.mu.Unlock()

	b.reply(msg.Chat.ID, fmt.Sprintf("Linked to %s. You will get alerts here when you are offline.", user.Name))
}

func (b *Bridge) handleUnlink(msg *tgbotapi.Message) {
	b.mu.Lock()
	var userID string
	for id, chatID := range b.linked {
		if chatID == msg.Chat.ID {
			userID = id
			delete(b.linked, id)
			break
		}
	}
	b.mu.Unlock()

	if userID == "" {
		b.reply(msg.Chat.ID, "This chat is not linked to any account.")
		return
	}
	if err := b.storage.UnlinkTelegram(userID); err != nil {
		log.Printf("telegram: unlink persist failed for %s: %v", userID, err)
	}
	b.reply(msg.Chat.ID, "Unlinked.")
}

func (b *Bridge) reply(chatID int64, text string) {
	select {
	case b.sendCh <- outbound{chatID: chatID, text: text}:
	default:
	}
}

func (b *Bridge) writePump() {
	for out := range b.sendCh {
		if _, err := b.bot.Send(tgbotapi.NewMessage(out.chatID, out.text)); err != nil {
			log.Printf("telegram: send to %d failed: %v", out.chatID, err)
		}
	}
}
