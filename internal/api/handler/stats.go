package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports liveness together with the counters and process memory.
func (h *Handler) Health(c *gin.Context) {
	st := h.Hub.Stats()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"timestamp":         st.TakenAt.UTC().Format(time.RFC3339Nano),
		"connections":       st.OnlineUsers,
		"waitingUsers":      st.WaitingUsers,
		"activeChats":       st.ActiveChats,
		"totalChatsCreated": st.TotalChatsCreated,
		"uptime":            h.Hub.Uptime().Seconds(),
		"memory": gin.H{
			"heapAlloc":  mem.HeapAlloc,
			"sys":        mem.Sys,
			"goroutines": runtime.NumGoroutine(),
		},
		"environment": h.cfg.Environment,
	})
}

// Stats is the operator view of the counters.
func (h *Handler) Stats(c *gin.Context) {
	st := h.Hub.Stats()
	c.JSON(http.StatusOK, gin.H{
		"totalConnections":  st.OnlineUsers,
		"waitingUsers":      st.WaitingUsers,
		"activeChats":       st.ActiveChats,
		"totalChatsCreated": st.TotalChatsCreated,
		"uptime":            h.Hub.Uptime().Seconds(),
		"environment":       h.cfg.Environment,
	})
}

// PublicStats is the subset shown by the frontend.
func (h *Handler) PublicStats(c *gin.Context) {
	st := h.Hub.Stats()
	c.JSON(http.StatusOK, gin.H{
		"onlineUsers":       st.OnlineUsers,
		"activeChats":       st.ActiveChats,
		"totalChatsCreated": st.TotalChatsCreated,
	})
}
