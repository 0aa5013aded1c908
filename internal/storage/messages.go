package storage

import (
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"gorm.io/gorm"
)

func (s *Service) SaveMessage(msg *models.Message) error {
	return s.DB.Create(msg).Error
}

// GetMessages returns the most recent messages of a chat, oldest first.
func (s *Service) GetMessages(chatID string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.
		Where("chat_id = ?", chatID).
		Order("created_at desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order for rendering.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkChatRead appends the user to read_by on every message of the chat
// they have not read yet. Their own messages are skipped.
func (s *Service) MarkChatRead(chatID, userID string) error {
	return s.DB.Model(&models.Message{}).
		Where("chat_id = ?", chatID).
		Where("sender_id <> ?", userID).
		Where("NOT (? = ANY(read_by))", userID).
		Update("read_by", gorm.Expr("array_append(read_by, ?)", userID)).Error
}
