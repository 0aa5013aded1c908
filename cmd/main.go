package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/api/handler"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/chathub"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/storage"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/telegram"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
		&models.FriendRequest{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting chat-app backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewService(db, rdb)

	hub := chathub.NewManager(s)

	if cfg.TelegramToken != "" {
		bridge, err := telegram.NewBridge(cfg.TelegramToken, s)
		if err != nil {
			log.Fatalf("Failed to start Telegram bridge: %v", err)
		}
		hub.SetOfflineDeliverer(bridge)
		go bridge.Run()
	}

	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, s, cfg)

	r.POST("/api/auth/signup", h.Signup)
	r.POST("/api/auth/login", h.Login)
	r.GET("/ws", h.ServeWebSocket)
	r.Static("/uploads", cfg.UploadDir)

	api := r.Group("/api", h.RequireAuth())
	{
		api.GET("/users/me", h.Me)
		api.GET("/users/search", h.SearchUsers)

		api.GET("/friends", h.ListFriends)
		api.GET("/friends/requests", h.ListPendingRequests)
		api.POST("/friends/requests", h.SendFriendRequest)
		api.PUT("/friends/requests/:id", h.RespondFriendRequest)

		api.GET("/chats", h.ListChats)
		api.POST("/chats/direct", h.CreateDirectChat)
		api.POST("/chats/group", h.CreateGroupChat)
		api.PUT("/chats/:id", h.UpdateChat)
		api.PUT("/chats/:id/members", h.UpdateMembers)
		api.DELETE("/chats/:id", h.DeleteChat)

		// Messages live under their own prefix; /chats/direct and
		// /chats/:id cannot share the POST tree in gin's router.
		api.GET("/messages/:chatID", h.GetMessages)
		api.POST("/messages/:chatID", h.PostMessage)
		api.POST("/attachments", h.UploadAttachments)
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	log.Fatal(server.ListenAndServe())
}
