package models

import (
	"time"

	"github.com/lib/pq"
)

// ChatRoom represents a live 1-on-1 chat session between two users.
// It is owned by the hub and only touched while the hub lock is held.
type ChatRoom struct {
	// RoomID is the unguessable identifier for the chat room (UUID).
	RoomID string
	// Members are the two paired profiles; order carries no meaning.
	Members [2]*UserProfile
	// Messages is the bounded history, oldest first.
	Messages []ChatMessage
	// CreatedAt is the timestamp when the pairing happened.
	CreatedAt time.Time
	// MessageCount counts every message relayed, including evicted ones.
	MessageCount int
}

// HasMember reports whether connID is one of the two members.
func (r *ChatRoom) HasMember(connID string) bool {
	return r.Member(connID) != nil
}

// Member returns the profile of connID inside the room, or nil.
func (r *ChatRoom) Member(connID string) *UserProfile {
	for _, m := range r.Members {
		if m != nil && m.ConnectionID == connID {
			return m
		}
	}
	return nil
}

// Partner returns the member that is not connID, or nil when connID is not in the room.
func (r *ChatRoom) Partner(connID string) *UserProfile {
	switch {
	case r.Members[0] != nil && r.Members[0].ConnectionID == connID:
		return r.Members[1]
	case r.Members[1] != nil && r.Members[1].ConnectionID == connID:
		return r.Members[0]
	}
	return nil
}

// AppendMessage adds msg to the history, evicting the oldest entry once the
// history holds limit messages. It reports whether an eviction happened.
func (r *ChatRoom) AppendMessage(msg ChatMessage, limit int) bool {
	if limit <= 0 {
		return false
	}
	r.MessageCount++
	if len(r.Messages) < limit {
		r.Messages = append(r.Messages, msg)
		return false
	}
	copy(r.Messages, r.Messages[1:])
	r.Messages[len(r.Messages)-1] = msg
	return true
}

// Record builds the archive row for this room.
func (r *ChatRoom) Record() RoomRecord {
	rec := RoomRecord{
		RoomID:    r.RoomID,
		StartedAt: r.CreatedAt,
		IsActive:  true,
	}
	if m := r.Members[0]; m != nil {
		rec.User1Location = m.Location
		rec.User1Interests = pq.StringArray(append([]string{}, m.Interests...))
	}
	if m := r.Members[1]; m != nil {
		rec.User2Location = m.Location
		rec.User2Interests = pq.StringArray(append([]string{}, m.Interests...))
	}
	return rec
}

// RoomRecord is the archived trace of a chat room in PostgreSQL.
// It keeps no usernames, connection ids or message bodies.
type RoomRecord struct {
	// RoomID is the identifier of the chat room (UUID).
	RoomID string `gorm:"primaryKey"`
	// User1Location and User2Location are the advertised locations of the members.
	User1Location string
	User2Location string
	// User1Interests and User2Interests are stored as PostgreSQL text arrays.
	User1Interests pq.StringArray `gorm:"type:text[]"`
	User2Interests pq.StringArray `gorm:"type:text[]"`
	// IsActive is true until the room is torn down.
	IsActive bool `gorm:"index"`
	// StartedAt is the timestamp when the chat room was created.
	StartedAt time.Time `gorm:"index"`
	// EndedAt is the timestamp when the chat room was closed.
	EndedAt *time.Time
	// EndReason tells why the room was closed.
	EndReason EndReason
	// MessageCount is the number of messages relayed in the room.
	MessageCount int
}

// EndReason describes why a room was torn down.
type EndReason string

const (
	EndReasonEnded        EndReason = "ended"
	EndReasonDisconnected EndReason = "disconnected"
	EndReasonAbandoned    EndReason = "abandoned"
	EndReasonExpired      EndReason = "expired"
	EndReasonShutdown     EndReason = "shutdown"
)
