package storage

import (
	"errors"
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"gorm.io/gorm"
)

var ErrChatNotFound = errors.New("chat not found")

func (s *Service) SaveChat(chat *models.Chat) error {
	return s.DB.Save(chat).Error
}

func (s *Service) GetChatByID(id string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// FindDirectChat looks up an existing two-party chat between a and b.
// Returns nil without error when none exists, so creation can proceed.
func (s *Service) FindDirectChat(a, b string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.
		Where("is_group = ?", false).
		Where("? = ANY(members) AND ? = ANY(members)", a, b).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChatsForUser builds the chat list: every chat the user belongs to,
// newest activity first, each with its latest message and the cached unread
// count. The latest-message lookup uses DISTINCT ON, which GORM has no
// clean expression for.
func (s *Service) GetChatsForUser(userID string) ([]models.ChatSummary, error) {
	var chats []models.Chat
	err := s.DB.
		Where("? = ANY(members)", userID).
		Order("updated_at desc").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	if len(chats) == 0 {
		return summaries, nil
	}

	chatIDs := make([]string, len(chats))
	for i, c := range chats {
		chatIDs[i] = c.ID
	}

	var latest []models.Message
	rawSQL := `
        SELECT DISTINCT ON (chat_id) *
        FROM messages
        WHERE chat_id IN ? AND deleted_at IS NULL
        ORDER BY chat_id, created_at DESC
    `
	if err := s.DB.Raw(rawSQL, chatIDs).Scan(&latest).Error; err != nil {
		return nil, err
	}
	lastByChat := make(map[string]*models.Message, len(latest))
	for i := range latest {
		lastByChat[latest[i].ChatID] = &latest[i]
	}

	unread, err := s.GetUnreadCounts(userID)
	if err != nil {
		return nil, err
	}

	for _, c := range chats {
		summaries = append(summaries, models.ChatSummary{
			Chat:        c,
			LastMessage: lastByChat[c.ID],
			Unread:      unread[c.ID],
		})
	}
	return summaries, nil
}

// TouchChat bumps the chat's updated_at so the chat list, ordered by it,
// surfaces the latest activity first.
func (s *Service) TouchChat(id string) error {
	return s.DB.Model(&models.Chat{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

func (s *Service) DeleteChat(id string) error {
	if err := s.DB.Where("chat_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	return s.DB.Delete(&models.Chat{}, "id = ?", id).Error
}
