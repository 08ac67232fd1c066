package handler

import (
	"log"
	"net/http"
	"strangerchat/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServeWebSocket upgrades the request and hands the connection to the hub.
// Every connection gets a fresh id; there is no identity beyond it.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	if !h.originAllowed(c.Request) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Origin not allowed"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Printf("WARNING: websocket upgrade failed: %v", err)
		return
	}

	client := chathub.NewWebSocketClient(uuid.NewString(), conn, h.Hub, h.cfg.WebSocket)
	h.Hub.Connect(client)
	client.Run()
}
