package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/storage"
	"github.com/gin-gonic/gin"
)

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Storage.GetUserByID(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SearchUsers matches display names; the caller is excluded from results.
func (h *Handler) SearchUsers(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query is required"})
		return
	}
	users, err := h.Storage.SearchUsers(name, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type sendRequestBody struct {
	RecipientID string `json:"recipientId" binding:"required"`
}

// SendFriendRequest creates a pending request and notifies the recipient.
func (h *Handler) SendFriendRequest(c *gin.Context) {
	userID := currentUserID(c)

	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.RecipientID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot befriend yourself"})
		return
	}

	recipient, err := h.Storage.GetUserByID(body.RecipientID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipient not found"})
		return
	}
	sender, err := h.Storage.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	req := &models.FriendRequest{SenderID: userID, RecipientID: recipient.ID}
	if err := h.Storage.CreateFriendRequest(req); err != nil {
		if errors.Is(err, storage.ErrDuplicateEdge) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}

	h.Hub.Emit(models.EventNewRequest, []string{recipient.ID}, models.FriendRequestPayload{
		RequestID: req.ID,
		Sender:    sender.Ref(),
		Recipient: recipient.Ref(),
		Status:    req.Status,
	})
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

type respondRequestBody struct {
	Accept *bool `json:"accept" binding:"required"`
}

// RespondFriendRequest accepts or rejects a pending request. Only the
// recipient may decide; both parties are notified of the outcome.
func (h *Handler) RespondFriendRequest(c *gin.Context) {
	userID := currentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	var body respondRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.Storage.GetFriendRequestByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	if req.RecipientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the recipient can respond"})
		return
	}
	if req.Status != models.RequestPending {
		c.JSON(http.StatusConflict, gin.H{"error": "request already decided"})
		return
	}

	status := models.RequestRejected
	event := models.EventRequestRejected
	if *body.Accept {
		status = models.RequestAccepted
		event = models.EventRequestAccepted
	}
	if err := h.Storage.UpdateFriendRequestStatus(req.ID, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update request"})
		return
	}
	req.Status = status

	payload := models.FriendRequestPayload{
		RequestID: req.ID,
		Sender:    models.UserRef{ID: req.SenderID},
		Recipient: models.UserRef{ID: req.RecipientID},
		Status:    status,
	}
	// The recipient's other tabs decrement their counter; the sender learns
	// the outcome.
	h.Hub.Emit(event, []string{req.SenderID, req.RecipientID}, payload)

	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ListPendingRequests returns the authoritative pending list. Clients
// reconcile their friend-request counter against its length rather than
// trusting increments alone.
func (h *Handler) ListPendingRequests(c *gin.Context) {
	reqs, err := h.Storage.GetPendingRequests(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "count": len(reqs)})
}

// ListFriends returns the friend list with presence, online flags taken
// from the shared online set.
func (h *Handler) ListFriends(c *gin.Context) {
	userID := currentUserID(c)

	friendIDs, err := h.Storage.GetFriendIDs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	friends, err := h.Storage.GetUsersByIDs(friendIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	online, err := h.Storage.OnlineAmong(friendIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	onlineSet := make(map[string]bool, len(online))
	for _, id := range online {
		onlineSet[id] = true
	}
	for i := range friends {
		friends[i].IsOnline = onlineSet[friends[i].ID]
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}
