package storage

import (
	"errors"
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUsersByIDs(ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SearchUsers matches display names case-insensitively, excluding the
// searching user themselves.
func (s *Service) SearchUsers(name, excludeID string) ([]models.User, error) {
	var users []models.User
	err := s.DB.
		Where("name ILIKE ?", "%"+name+"%").
		Where("id <> ?", excludeID).
		Where("deactivated = ?", false).
		Limit(20).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserPresence persists an online/offline transition. LastActive is kept
// even for offline users so "last seen" can be rendered.
func (s *Service) SetUserPresence(id string, online bool, lastActive time.Time) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_online":   online,
			"last_active": lastActive,
		}).Error
}

func (s *Service) LinkTelegram(userID, telegramID string) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("telegram_id", telegramID).Error
}

func (s *Service) UnlinkTelegram(userID string) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("telegram_id", nil).Error
}

// GetLinkedUsers returns every user with a Telegram account attached, for
// bridge registration at startup.
func (s *Service) GetLinkedUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Where("telegram_id IS NOT NULL").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) DeactivateUser(id string) error {
	res := s.DB.Model(&models.User{}).Where("id = ?", id).Update("deactivated", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
