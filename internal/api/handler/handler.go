package handler

import (
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/chathub"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/storage"
)

// Handler carries the dependencies shared by all HTTP endpoints.
type Handler struct {
	Hub      *chathub.Manager
	Storage  storage.Storage
	Counters *chathub.Counters
	Cfg      *config.Config
}

func NewHandler(hub *chathub.Manager, s storage.Storage, cfg *config.Config) *Handler {
	return &Handler{
		Hub:      hub,
		Storage:  s,
		Counters: chathub.NewCounters(s),
		Cfg:      cfg,
	}
}
