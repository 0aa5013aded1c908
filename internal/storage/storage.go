package storage

import (
	"context"
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence boundary consumed by the hub, the HTTP
// handlers and the Telegram bridge. Postgres is the source of truth; Redis
// carries the event bus, the online set and the unread-counter cache.
type Storage interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUsersByIDs(ids []string) ([]models.User, error)
	SearchUsers(name, excludeID string) ([]models.User, error)
	SetUserPresence(id string, online bool, lastActive time.Time) error
	LinkTelegram(userID, telegramID string) error
	UnlinkTelegram(userID string) error
	GetLinkedUsers() ([]models.User, error)
	DeactivateUser(id string) error

	// Friends
	CreateFriendRequest(req *models.FriendRequest) error
	GetFriendRequestByID(id uint) (*models.FriendRequest, error)
	UpdateFriendRequestStatus(id uint, status string) error
	GetPendingRequests(userID string) ([]models.FriendRequest, error)
	GetFriendIDs(userID string) ([]string, error)
	AreFriends(a, b string) (bool, error)

	// Chats
	SaveChat(chat *models.Chat) error
	GetChatByID(id string) (*models.Chat, error)
	FindDirectChat(a, b string) (*models.Chat, error)
	GetChatsForUser(userID string) ([]models.ChatSummary, error)
	TouchChat(id string) error
	DeleteChat(id string) error

	// Messages
	SaveMessage(msg *models.Message) error
	GetMessages(chatID string, limit int) ([]models.Message, error)
	MarkChatRead(chatID, userID string) error

	// Unread counters (Redis cache over message read-state)
	IncrUnread(userID, chatID string) error
	ClearUnread(userID, chatID string) error
	GetUnreadCounts(userID string) (map[string]int64, error)
	SetUnreadCounts(userID string, counts map[string]int64) error
	CountUnreadFromDB(userID string) (map[string]int64, error)

	// Presence set (Redis, shared across instances)
	MarkOnline(userID string) error
	MarkOffline(userID string) error
	OnlineAmong(userIDs []string) ([]string, error)

	// Event bus
	PublishEvent(env models.Envelope) error
	SubscribeEvents() *redis.PubSub
}

// Service is the concrete Storage over GORM and go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService constructs the storage service.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}
