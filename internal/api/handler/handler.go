package handler

import (
	"net/http"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Handler serves the WebSocket endpoint and the read-only stats endpoints.
type Handler struct {
	Hub *chathub.ManagerService

	cfg      *config.Config
	origins  map[string]bool
	upgrader websocket.Upgrader
}

func NewHandler(hub *chathub.ManagerService, cfg *config.Config) *Handler {
	h := &Handler{
		Hub:     hub,
		cfg:     cfg,
		origins: lo.SliceToMap(cfg.AllowedOrigins(), func(o string) (string, bool) { return o, true }),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.originAllowed,
	}
	return h
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r *gin.Engine) {
	r.Use(h.CORS())
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)
	r.GET("/api/stats", h.PublicStats)
}

// originAllowed accepts any origin outside production. Requests without an
// Origin header come from non-browser clients and are accepted as well.
func (h *Handler) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || !h.cfg.IsProduction() {
		return true
	}
	return h.origins[origin]
}

// CORS mirrors allowed origins back to the browser and answers preflight requests.
func (h *Handler) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case !h.cfg.IsProduction():
			if origin != "" {
				c.Header("Access-Control-Allow-Origin", origin)
			} else {
				c.Header("Access-Control-Allow-Origin", "*")
			}
		case h.origins[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
