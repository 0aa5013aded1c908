package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/chathub"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type postMessageBody struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

// PostMessage persists and fans out a message through the hub, same path
// as the WebSocket new-message event.
func (h *Handler) PostMessage(c *gin.Context) {
	var body postMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Content == "" && len(body.Attachments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message needs content or attachments"})
		return
	}
	if len(body.Attachments) > config.MaxAttachments {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many attachments"})
		return
	}

	msg, err := h.Hub.SendMessage(currentUserID(c), c.Param("chatID"), body.Content, body.Attachments)
	if errors.Is(err, chathub.ErrNotAMember) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// GetMessages returns the latest page of a chat's messages. Fetching a
// chat's messages is "opening" it: messages are marked read and the unread
// counter drops to zero.
func (h *Handler) GetMessages(c *gin.Context) {
	userID := currentUserID(c)
	chatID := c.Param("chatID")

	if err := h.Hub.OpenChat(userID, chatID); err != nil {
		if errors.Is(err, chathub.ErrNotAMember) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}

	messages, err := h.Storage.GetMessages(chatID, config.MessagePageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// UploadAttachments stores multipart files under the upload dir and
// returns URLs to reference from messages.
func (h *Handler) UploadAttachments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}
	if len(files) > config.MaxAttachments {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many files"})
		return
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		if file.Size > config.MaxAttachmentMB<<20 {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large: " + file.Filename})
			return
		}
		name := uuid.New().String() + filepath.Ext(file.Filename)
		dst := filepath.Join(h.Cfg.UploadDir, name)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to store %s", file.Filename)})
			return
		}
		urls = append(urls, "/uploads/"+name)
	}
	c.JSON(http.StatusCreated, gin.H{"attachments": urls})
}
