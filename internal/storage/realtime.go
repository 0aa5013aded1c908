package storage

import (
	"encoding/json"
	"strconv"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/redis/go-redis/v9"
)

// --- Unread counters ---
//
// The Redis hash unread:<userID> maps chat IDs to counts. It is a cache
// over message read-state; CountUnreadFromDB recomputes the authoritative
// values for reconciliation.

func unreadKey(userID string) string {
	return config.UnreadKeyPrefix + userID
}

func (s *Service) IncrUnread(userID, chatID string) error {
	return s.Redis.HIncrBy(s.Ctx, unreadKey(userID), chatID, 1).Err()
}

func (s *Service) ClearUnread(userID, chatID string) error {
	return s.Redis.HDel(s.Ctx, unreadKey(userID), chatID).Err()
}

func (s *Service) GetUnreadCounts(userID string) (map[string]int64, error) {
	raw, err := s.Redis.HGetAll(s.Ctx, unreadKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(raw))
	for chatID, v := range raw {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			counts[chatID] = n
		}
	}
	return counts, nil
}

// SetUnreadCounts replaces the cached hash wholesale, for reconciliation.
func (s *Service) SetUnreadCounts(userID string, counts map[string]int64) error {
	key := unreadKey(userID)
	if err := s.Redis.Del(s.Ctx, key).Err(); err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(counts))
	for chatID, n := range counts {
		fields[chatID] = n
	}
	return s.Redis.HSet(s.Ctx, key, fields).Err()
}

// CountUnreadFromDB recomputes unread counts from Postgres: messages in the
// user's chats that they neither sent nor read.
func (s *Service) CountUnreadFromDB(userID string) (map[string]int64, error) {
	type row struct {
		ChatID string
		Count  int64
	}
	var rows []row
	err := s.DB.Raw(`
        SELECT m.chat_id, COUNT(*) AS count
        FROM messages m
        JOIN chats c ON c.id = m.chat_id
        WHERE ? = ANY(c.members)
          AND m.sender_id <> ?
          AND NOT (? = ANY(m.read_by))
          AND m.deleted_at IS NULL
        GROUP BY m.chat_id
    `, userID, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ChatID] = r.Count
	}
	return counts, nil
}

// --- Presence set ---

func (s *Service) MarkOnline(userID string) error {
	return s.Redis.SAdd(s.Ctx, config.OnlineUsersKey, userID).Err()
}

func (s *Service) MarkOffline(userID string) error {
	return s.Redis.SRem(s.Ctx, config.OnlineUsersKey, userID).Err()
}

// OnlineAmong filters the given IDs down to those in the shared online set.
func (s *Service) OnlineAmong(userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	members := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		members[i] = id
	}
	flags, err := s.Redis.SMIsMember(s.Ctx, config.OnlineUsersKey, members...).Result()
	if err != nil {
		return nil, err
	}
	var online []string
	for i, ok := range flags {
		if ok {
			online = append(online, userIDs[i])
		}
	}
	return online, nil
}

// --- Event bus ---

// PublishEvent puts a targeted envelope on the shared event channel. Every
// instance's hub subscribes and delivers to its locally connected targets.
func (s *Service) PublishEvent(env models.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, config.EventChannel, data).Err()
}

func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, config.EventChannel)
}
