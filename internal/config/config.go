// Package config loads the server settings from the environment (optionally seeded
// from a .env file) and holds the chat policy constants.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full runtime configuration of the server.
type Config struct {
	Port        string `envconfig:"PORT" default:"3001"`
	Environment string `envconfig:"NODE_ENV" default:"development"`
	ClientURL   string `envconfig:"CLIENT_URL"`
	FrontendURL string `envconfig:"FRONTEND_URL"`

	DatabaseDSN string `envconfig:"DATABASE_DSN"`
	RedisAddr   string `envconfig:"REDIS_ADDR"`
	RedisPass   string `envconfig:"REDIS_PASSWORD"`
	RedisDB     int    `envconfig:"REDIS_DB" default:"0"`

	Chat      ChatConfig      `envconfig:"CHAT"`
	WebSocket WebSocketConfig `envconfig:"WS"`
}

// ChatConfig holds the matchmaking and retention policy.
type ChatConfig struct {
	MaxRoomMessages  int           `envconfig:"MAX_ROOM_MESSAGES" default:"100"`
	MaxMessageLength int           `envconfig:"MAX_MESSAGE_LENGTH" default:"500"`
	QueueEntryTTL    time.Duration `envconfig:"QUEUE_TTL" default:"5m"`
	RoomTTL          time.Duration `envconfig:"ROOM_TTL" default:"1h"`
	SweepInterval    time.Duration `envconfig:"SWEEP_INTERVAL" default:"30s"`
	StatsLogInterval time.Duration `envconfig:"STATS_LOG_INTERVAL" default:"5m"`
}

// WebSocketConfig holds the transport heartbeat and buffer settings.
type WebSocketConfig struct {
	PingInterval   time.Duration `envconfig:"PING_INTERVAL" default:"25s"`
	PongWait       time.Duration `envconfig:"PONG_WAIT" default:"60s"`
	WriteWait      time.Duration `envconfig:"WRITE_WAIT" default:"10s"`
	MaxFrameSize   int64         `envconfig:"MAX_FRAME_SIZE" default:"65536"`
	SendBufferSize int           `envconfig:"SEND_BUFFER" default:"256"`
}

// DefaultChatConfig returns the policy used when nothing is configured.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		MaxRoomMessages:  MaxRoomMessages,
		MaxMessageLength: MaxMessageLength,
		QueueEntryTTL:    QueueEntryTTL,
		RoomTTL:          RoomTTL,
		SweepInterval:    SweepInterval,
		StatsLogInterval: StatsLogInterval,
	}
}

// DefaultWebSocketConfig returns the transport settings used when nothing is configured.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		PingInterval:   PingInterval,
		PongWait:       PongWait,
		WriteWait:      WriteWait,
		MaxFrameSize:   MaxFrameSize,
		SendBufferSize: SendBufferSize,
	}
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Chat.MaxRoomMessages <= 0 {
		return fmt.Errorf("CHAT_MAX_ROOM_MESSAGES must be positive, got %d", c.Chat.MaxRoomMessages)
	}
	if c.Chat.MaxMessageLength <= 0 {
		return fmt.Errorf("CHAT_MAX_MESSAGE_LENGTH must be positive, got %d", c.Chat.MaxMessageLength)
	}
	if c.Chat.SweepInterval <= 0 {
		return fmt.Errorf("CHAT_SWEEP_INTERVAL must be positive, got %s", c.Chat.SweepInterval)
	}
	if c.WebSocket.SendBufferSize <= 0 {
		return fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", c.WebSocket.SendBufferSize)
	}
	if c.WebSocket.MaxFrameSize <= 0 {
		return fmt.Errorf("WS_MAX_FRAME_SIZE must be positive, got %d", c.WebSocket.MaxFrameSize)
	}
	if c.WebSocket.PingInterval >= c.WebSocket.PongWait {
		return fmt.Errorf("WS_PING_INTERVAL (%s) must be shorter than WS_PONG_WAIT (%s)",
			c.WebSocket.PingInterval, c.WebSocket.PongWait)
	}
	return nil
}

// IsProduction reports whether the server runs with NODE_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the origins accepted in production mode.
func (c *Config) AllowedOrigins() []string {
	origins := append([]string{}, DefaultAllowedOrigins...)
	for _, o := range []string{c.ClientURL, c.FrontendURL} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}
