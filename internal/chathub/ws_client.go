package chathub

import (
	"errors"
	"log"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/models"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketClient implements chathub.Client on top of a gorilla/websocket connection.
// Liveness follows the ping/pong heartbeat: a peer that misses pongs for PongWait
// fails its next read and is reported to the hub as disconnected.
type WebSocketClient struct {
	ConnID string
	Conn   *websocket.Conn
	Hub    *ManagerService

	cfg       config.WebSocketConfig
	send      chan models.Event
	done      chan struct{}
	connected atomic.Bool
	closeOnce sync.Once
}

// NewWebSocketClient wraps conn for the hub.
func NewWebSocketClient(connID string, conn *websocket.Conn, hub *ManagerService, cfg config.WebSocketConfig) *WebSocketClient {
	c := &WebSocketClient{
		ConnID: connID,
		Conn:   conn,
		Hub:    hub,
		cfg:    cfg,
		send:   make(chan models.Event, cfg.SendBufferSize),
		done:   make(chan struct{}),
	}
	c.connected.Store(true)
	return c
}

// --- Client interface ---

func (c *WebSocketClient) GetConnID() string { return c.ConnID }
func (c *WebSocketClient) IsConnected() bool { return c.connected.Load() }

// Send queues ev for the write pump without blocking.
func (c *WebSocketClient) Send(ev models.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close marks the client dead and closes the socket; readPump then reports the disconnect.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		close(c.done)
		c.Conn.Close()
	})
}

// readPump reads frames from the socket and dispatches them to the hub.
func (c *WebSocketClient) readPump() {
	reason := "transport close"
	defer func() {
		c.Close()
		c.Hub.Disconnect(c.ConnID, reason)
	}()

	c.Conn.SetReadLimit(c.cfg.MaxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			var ce *websocket.CloseError
			if errors.Is(err, websocket.ErrReadLimit) {
				reason = "frame too large"
			} else if errors.As(err, &ce) {
				reason = ce.Error()
			} else if !c.IsConnected() {
				reason = "server close"
			} else {
				reason = "ping timeout"
			}
			return
		}
		c.Hub.Dispatch(c, frame)
	}
}

// writePump drains the send buffer into the socket and keeps the heartbeat going.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case ev := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.Conn.WriteJSON(ev); err != nil {
				log.Printf("Error writing event %s to client %s: %v", ev.Name, c.ConnID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
