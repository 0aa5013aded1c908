package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// Realtime
	TypingTimeout   = 2 * time.Second
	SendBufferSize  = 256
	EventChannel    = "realtime:events"
	OnlineUsersKey  = "online_users"
	UnreadKeyPrefix = "unread:"

	// Chats
	MaxGroupMembers = 100
	DirectChatSize  = 2
	MessagePageSize = 50
	MaxAttachments  = 5
	MaxAttachmentMB = 10

	// Auth
	TokenTTL = 72 * time.Hour
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	UploadDir     string
	TelegramToken string // empty disables the bridge
}

// Load reads the configuration from environment variables. The JWT secret is
// the only value without a default.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is not set")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost user=user password=password dbname=chatapp port=5432 sslmode=disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     secret,
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
