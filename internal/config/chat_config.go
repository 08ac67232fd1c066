package config

import "time"

const (
	// Rooms
	MaxRoomMessages  = 100
	MaxMessageLength = 500

	// Staleness
	QueueEntryTTL = 5 * time.Minute
	RoomTTL       = 1 * time.Hour

	// Sweeper
	SweepInterval    = 30 * time.Second
	StatsLogInterval = 5 * time.Minute

	// Transport
	PingInterval   = 25 * time.Second
	PongWait       = 60 * time.Second
	WriteWait      = 10 * time.Second
	MaxFrameSize   = 64 << 10
	SendBufferSize = 256

	// Archive
	RecorderBufferSize = 1024
)

// DefaultAllowedOrigins are the development front-ends accepted in production mode
// on top of CLIENT_URL and FRONTEND_URL.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://localhost:4173",
}
