package chathub

import (
	"errors"
	"strangerchat/backend/internal/models"
	"strings"
	"time"

	"github.com/samber/lo"
)

var (
	ErrRoomNotFound  = errors.New("chat room not found")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrNotRoomMember = errors.New("sender is not a member of the room")
)

// Relay routes messages, typing notices and end-chat requests inside rooms.
// Not safe for concurrent use; ManagerService guards it.
type Relay struct {
	Rooms *RoomStore

	maxMessages int
	maxLength   int
	nextID      int64
}

// NewRelay creates a relay keeping at most maxMessages per room and
// truncating bodies to maxLength characters.
func NewRelay(rooms *RoomStore, maxMessages, maxLength int) *Relay {
	return &Relay{
		Rooms:       rooms,
		maxMessages: maxMessages,
		maxLength:   maxLength,
	}
}

// PostMessage stores a message in the room and returns it for broadcast to every member,
// sender included.
func (r *Relay) PostMessage(roomID, senderID, rawBody string, ts time.Time) (*models.ChatMessage, error) {
	room, ok := r.Rooms.Get(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	sender := room.Member(senderID)
	if sender == nil {
		return nil, ErrNotRoomMember
	}
	body := r.normalize(rawBody)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	r.nextID++
	msg := models.ChatMessage{
		ID:        r.nextID,
		Username:  sender.Username,
		Message:   body,
		Timestamp: ts,
		SenderID:  senderID,
	}
	room.AppendMessage(msg, r.maxMessages)
	return &msg, nil
}

// normalize trims surrounding whitespace and caps the body at maxLength runes.
func (r *Relay) normalize(raw string) string {
	body := strings.TrimSpace(raw)
	runes := []rune(body)
	if len(runes) > r.maxLength {
		body = string(runes[:r.maxLength])
	}
	return body
}

// SetTyping returns who must be told that connID is (not) typing: every member but the sender.
// Nothing is stored.
func (r *Relay) SetTyping(roomID, connID string) (*models.UserProfile, []*models.UserProfile, error) {
	room, ok := r.Rooms.Get(roomID)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	sender := room.Member(connID)
	if sender == nil {
		return nil, nil, ErrNotRoomMember
	}
	recipients := lo.Filter(room.Members[:], func(m *models.UserProfile, _ int) bool {
		return m != nil && m.ConnectionID != connID
	})
	return sender, recipients, nil
}

// EndChat deletes the room and returns it so the caller can notify its members.
// Ending an absent room is a no-op that returns false.
func (r *Relay) EndChat(roomID string) (*models.ChatRoom, bool) {
	return r.Rooms.Delete(roomID)
}
