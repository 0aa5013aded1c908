package handler

import (
	"net/http"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/chathub"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin is enforced by the deployment proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authenticates the handshake and hands the connection to
// the hub. The token is checked before the upgrade: a failed handshake
// never creates a registry entry.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		// Fall back to the header for non-browser clients.
		header := c.GetHeader("Authorization")
		if len(header) > 7 && header[:7] == "Bearer " {
			token = header[7:]
		}
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token missing"})
		return
	}

	userID, err := h.VerifyToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token or expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		Hub:    h.Hub,
		UserID: userID,
		Conn:   conn,
		Send:   make(chan models.Event, config.SendBufferSize),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
