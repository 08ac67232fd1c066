package models

import "time"

// ChatMessage is a relayed text message. Immutable once appended to a room.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  string    `json:"senderId"`
}
