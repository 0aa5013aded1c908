package chathub_test

import (
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock over the full storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

// User operations

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUsersByIDs(ids []string) ([]models.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) SearchUsers(name, excludeID string) ([]models.User, error) {
	args := m.Called(name, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) SetUserPresence(id string, online bool, lastActive time.Time) error {
	args := m.Called(id, online, lastActive)
	return args.Error(0)
}

func (m *MockStorage) LinkTelegram(userID, telegramID string) error {
	args := m.Called(userID, telegramID)
	return args.Error(0)
}

func (m *MockStorage) UnlinkTelegram(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) GetLinkedUsers() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) DeactivateUser(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// Friend operations

func (m *MockStorage) CreateFriendRequest(req *models.FriendRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockStorage) GetFriendRequestByID(id uint) (*models.FriendRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendRequest), args.Error(1)
}

func (m *MockStorage) UpdateFriendRequestStatus(id uint, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockStorage) GetPendingRequests(userID string) ([]models.FriendRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FriendRequest), args.Error(1)
}

func (m *MockStorage) GetFriendIDs(userID string) ([]string, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) AreFriends(a, b string) (bool, error) {
	args := m.Called(a, b)
	return args.Bool(0), args.Error(1)
}

// Chat operations

func (m *MockStorage) SaveChat(chat *models.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) GetChatByID(id string) (*models.Chat, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) FindDirectChat(a, b string) (*models.Chat, error) {
	args := m.Called(a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) GetChatsForUser(userID string) ([]models.ChatSummary, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatSummary), args.Error(1)
}

func (m *MockStorage) TouchChat(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) DeleteChat(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// Message operations

func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetMessages(chatID string, limit int) ([]models.Message, error) {
	args := m.Called(chatID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) MarkChatRead(chatID, userID string) error {
	args := m.Called(chatID, userID)
	return args.Error(0)
}

// Unread counters

func (m *MockStorage) IncrUnread(userID, chatID string) error {
	args := m.Called(userID, chatID)
	return args.Error(0)
}

func (m *MockStorage) ClearUnread(userID, chatID string) error {
	args := m.Called(userID, chatID)
	return args.Error(0)
}

func (m *MockStorage) GetUnreadCounts(userID string) (map[string]int64, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockStorage) SetUnreadCounts(userID string, counts map[string]int64) error {
	args := m.Called(userID, counts)
	return args.Error(0)
}

func (m *MockStorage) CountUnreadFromDB(userID string) (map[string]int64, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// Presence set

func (m *MockStorage) MarkOnline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) MarkOffline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) OnlineAmong(userIDs []string) ([]string, error) {
	args := m.Called(userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Event bus

func (m *MockStorage) PublishEvent(env models.Envelope) error {
	args := m.Called(env)
	return args.Error(0)
}

func (m *MockStorage) SubscribeEvents() *redis.PubSub {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}

// publishedEnvelopes collects every envelope that went through
// PublishEvent, in call order.
func publishedEnvelopes(m *MockStorage) []models.Envelope {
	var envs []models.Envelope
	for _, call := range m.Calls {
		if call.Method == "PublishEvent" {
			envs = append(envs, call.Arguments.Get(0).(models.Envelope))
		}
	}
	return envs
}

// envelopesNamed filters published envelopes by event name.
func envelopesNamed(m *MockStorage, name string) []models.Envelope {
	var out []models.Envelope
	for _, env := range publishedEnvelopes(m) {
		if env.Event.Name == name {
			out = append(out, env)
		}
	}
	return out
}
