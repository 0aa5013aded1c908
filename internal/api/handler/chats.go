package handler

import (
	"net/http"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/gin-gonic/gin"
)

type directChatBody struct {
	UserID string `json:"userId" binding:"required"`
}

// CreateDirectChat opens (or returns) the two-party chat with another user.
// Direct chats are deduplicated: asking twice yields the same chat.
func (h *Handler) CreateDirectChat(c *gin.Context) {
	userID := currentUserID(c)

	var body directChatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}
	if _, err := h.Storage.GetUserByID(body.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	existing, err := h.Storage.FindDirectChat(userID, body.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, gin.H{"chat": existing})
		return
	}

	chat := &models.Chat{
		IsGroup:   false,
		CreatorID: userID,
		Members:   []string{userID, body.UserID},
	}
	if err := h.Storage.SaveChat(chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

type groupChatBody struct {
	Name      string   `json:"name" binding:"required"`
	Icon      string   `json:"icon"`
	MemberIDs []string `json:"memberIds" binding:"required"`
}

// CreateGroupChat creates a named group. The creator is always a member
// and at least two others are required.
func (h *Handler) CreateGroupChat(c *gin.Context) {
	userID := currentUserID(c)

	var body groupChatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	members := dedupe(append(body.MemberIDs, userID))
	if len(members) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a group needs at least two other members"})
		return
	}
	if len(members) > config.MaxGroupMembers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many members"})
		return
	}

	chat := &models.Chat{
		IsGroup:   true,
		Name:      body.Name,
		IconURL:   body.Icon,
		CreatorID: userID,
		Members:   members,
	}
	if err := h.Storage.SaveChat(chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

// ListChats returns the caller's chat list with last messages and unread
// counts. The cached counters are rewritten from message read-state first,
// so the list reflects the database, not accumulated increments.
func (h *Handler) ListChats(c *gin.Context) {
	userID := currentUserID(c)

	if _, err := h.Counters.Reconcile(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	summaries, err := h.Storage.GetChatsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": summaries})
}

type updateChatBody struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// UpdateChat renames a group or changes its icon. Creator only.
func (h *Handler) UpdateChat(c *gin.Context) {
	userID := currentUserID(c)

	chat, err := h.Storage.GetChatByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if !chat.IsGroup {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direct chats cannot be edited"})
		return
	}
	if chat.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can edit the group"})
		return
	}

	var body updateChatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Name != "" {
		chat.Name = body.Name
	}
	if body.Icon != "" {
		chat.IconURL = body.Icon
	}
	if err := h.Storage.SaveChat(chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

type updateMembersBody struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// UpdateMembers adds or removes group members. Only the creator may change
// membership, with one exception: any member may remove themselves (leave).
// The creator cannot be removed.
func (h *Handler) UpdateMembers(c *gin.Context) {
	userID := currentUserID(c)

	chat, err := h.Storage.GetChatByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if !chat.IsGroup {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direct chat membership is fixed"})
		return
	}

	var body updateMembersBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	leavingSelf := len(body.Add) == 0 && len(body.Remove) == 1 && body.Remove[0] == userID
	if chat.CreatorID != userID && !leavingSelf {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can change members"})
		return
	}

	members := chat.Members
	for _, id := range body.Remove {
		if id == chat.CreatorID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "the creator cannot be removed"})
			return
		}
		members = without(members, id)
	}
	for _, id := range body.Add {
		if _, err := h.Storage.GetUserByID(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found: " + id})
			return
		}
		members = append(members, id)
	}
	members = dedupe(members)
	if len(members) > config.MaxGroupMembers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many members"})
		return
	}

	chat.Members = members
	if err := h.Storage.SaveChat(chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update members"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// DeleteChat removes a group chat and its messages. Creator only.
func (h *Handler) DeleteChat(c *gin.Context) {
	userID := currentUserID(c)

	chat, err := h.Storage.GetChatByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if !chat.IsGroup || chat.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the group creator can delete it"})
		return
	}
	if err := h.Storage.DeleteChat(chat.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": chat.ID})
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func without(ids []string, remove string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != remove {
			out = append(out, id)
		}
	}
	return out
}
