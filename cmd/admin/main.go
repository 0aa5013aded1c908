package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/chathub"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/storage"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Ops CLI: counter reconciliation and account deactivation.
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	s := storage.NewService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <reconcile|deactivate> <user_id>")
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "reconcile":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin reconcile <user_id>")
			os.Exit(1)
		}
		counts, err := chathub.NewCounters(s).Reconcile(os.Args[2])
		if err != nil {
			log.Fatalf("Error reconciling counters: %v", err)
		}
		fmt.Printf("Reconciled %d chats for %s:\n", len(counts), os.Args[2])
		for chatID, n := range counts {
			fmt.Printf("  %s: %d unread\n", chatID, n)
		}
	case "deactivate":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin deactivate <user_id>")
			os.Exit(1)
		}
		if err := s.DeactivateUser(os.Args[2]); err != nil {
			log.Fatalf("Error deactivating user: %v", err)
		}
		fmt.Printf("User %s has been deactivated.\n", os.Args[2])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}
