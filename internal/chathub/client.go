package chathub

import "strangerchat/backend/internal/models"

// Client is the interface for any type of connection (e.g., WebSocket).
// It abstracts the underlying transport, allowing the hub to manage
// connections uniformly and to ask the transport whether a connection is still alive.
type Client interface {
	// GetConnID returns the unique identifier of the connection.
	GetConnID() string

	// Send queues an event for delivery. It must never block; it returns false
	// when the event could not be queued (closed connection or full buffer).
	Send(event models.Event) bool

	// IsConnected reports whether the underlying transport session is still open.
	IsConnected() bool

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the connection down. The transport later reports the
	// disconnect through ManagerService.Disconnect.
	Close()
}
