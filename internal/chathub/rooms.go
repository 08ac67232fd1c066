package chathub

import (
	"strangerchat/backend/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// RoomStore holds the active chat rooms and which room each connection is in.
// Not safe for concurrent use; ManagerService guards it.
type RoomStore struct {
	rooms  map[string]*models.ChatRoom
	byConn map[string]string
	newID  func() string
}

// NewRoomStore creates an empty store that names rooms with random UUIDs.
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms:  make(map[string]*models.ChatRoom),
		byConn: make(map[string]string),
		newID:  func() string { return uuid.New().String() },
	}
}

// Create opens a room for a and b.
func (s *RoomStore) Create(a, b *models.UserProfile, now time.Time) *models.ChatRoom {
	room := &models.ChatRoom{
		RoomID:    s.newID(),
		Members:   [2]*models.UserProfile{a, b},
		CreatedAt: now,
	}
	s.rooms[room.RoomID] = room
	s.byConn[a.ConnectionID] = room.RoomID
	s.byConn[b.ConnectionID] = room.RoomID
	return room
}

// Get returns the room with roomID.
func (s *RoomStore) Get(roomID string) (*models.ChatRoom, bool) {
	room, ok := s.rooms[roomID]
	return room, ok
}

// RoomOf returns the room connID is a member of.
func (s *RoomStore) RoomOf(connID string) (*models.ChatRoom, bool) {
	roomID, ok := s.byConn[connID]
	if !ok {
		return nil, false
	}
	return s.Get(roomID)
}

// Delete removes the room and detaches its members. Deleting an absent room is a no-op.
func (s *RoomStore) Delete(roomID string) (*models.ChatRoom, bool) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}
	for _, m := range room.Members {
		if m != nil && s.byConn[m.ConnectionID] == roomID {
			delete(s.byConn, m.ConnectionID)
		}
	}
	delete(s.rooms, roomID)
	return room, true
}

// Len returns the number of active rooms.
func (s *RoomStore) Len() int {
	return len(s.rooms)
}

// All returns the active rooms in no particular order.
func (s *RoomStore) All() []*models.ChatRoom {
	return lo.Values(s.rooms)
}
