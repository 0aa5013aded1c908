package storage

import (
	"errors"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound = errors.New("friend request not found")
	ErrDuplicateEdge   = errors.New("a request or friendship already exists between these users")
)

// CreateFriendRequest inserts a pending request unless an undecided or
// accepted edge already exists in either direction.
func (s *Service) CreateFriendRequest(req *models.FriendRequest) error {
	var count int64
	err := s.DB.Model(&models.FriendRequest{}).
		Where("status IN ?", []string{models.RequestPending, models.RequestAccepted}).
		Where(
			s.DB.Where("sender_id = ? AND recipient_id = ?", req.SenderID, req.RecipientID).
				Or("sender_id = ? AND recipient_id = ?", req.RecipientID, req.SenderID),
		).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateEdge
	}

	req.Status = models.RequestPending
	return s.DB.Create(req).Error
}

func (s *Service) GetFriendRequestByID(id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := s.DB.First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) UpdateFriendRequestStatus(id uint, status string) error {
	return s.DB.Model(&models.FriendRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// GetPendingRequests returns the authoritative pending list addressed to
// the user. The client-side counter reconciles against its length.
func (s *Service) GetPendingRequests(userID string) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := s.DB.
		Where("recipient_id = ? AND status = ?", userID, models.RequestPending).
		Order("created_at desc").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// GetFriendIDs resolves the friendship set: accepted requests in either
// direction. Presence broadcasts are filtered against this set.
func (s *Service) GetFriendIDs(userID string) ([]string, error) {
	var reqs []models.FriendRequest
	err := s.DB.
		Where("status = ?", models.RequestAccepted).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}

	friends := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if r.SenderID == userID {
			friends = append(friends, r.RecipientID)
		} else {
			friends = append(friends, r.SenderID)
		}
	}
	return friends, nil
}

func (s *Service) AreFriends(a, b string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.FriendRequest{}).
		Where("status = ?", models.RequestAccepted).
		Where(
			s.DB.Where("sender_id = ? AND recipient_id = ?", a, b).
				Or("sender_id = ? AND recipient_id = ?", b, a),
		).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
