package models

import (
	"encoding/json"
	"time"
)

// Inbound event names sent by clients.
const (
	EventFindStranger = "find-stranger"
	EventSendMessage  = "send-message"
	EventTyping       = "typing"
	EventEndChat      = "end-chat"
)

// Outbound event names sent by the server.
const (
	EventStatsUpdate         = "stats-update"
	EventWaitingForStranger  = "waiting-for-stranger"
	EventStrangerFound       = "stranger-found"
	EventNewMessage          = "new-message"
	EventUserTyping          = "user-typing"
	EventChatEnded           = "chat-ended"
	EventPartnerDisconnected = "partner-disconnected"
	EventError               = "error"
)

// Event is the frame exchanged over the wire in both directions.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// InboundEvent is a client frame whose payload is decoded once the name is known.
type InboundEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// FindStrangerRequest is the optional self-description sent with find-stranger.
type FindStrangerRequest struct {
	Username  string   `json:"username" validate:"max=32"`
	Location  string   `json:"location" validate:"max=64"`
	Interests []string `json:"interests" validate:"max=10,dive,max=32"`
}

// SendMessageRequest carries a chat line. Timestamp is accepted but the server clock wins.
type SendMessageRequest struct {
	RoomID    string `json:"roomId" validate:"required"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// TypingRequest toggles the typing indicator shown to the partner.
type TypingRequest struct {
	RoomID   string `json:"roomId" validate:"required"`
	IsTyping bool   `json:"isTyping"`
}

// EndChatRequest asks to close a room.
type EndChatRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

// UnmarshalJSON accepts both {"roomId": "..."} and a bare "..." string.
func (r *EndChatRequest) UnmarshalJSON(data []byte) error {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err == nil {
		r.RoomID = roomID
		return nil
	}
	type plain EndChatRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = EndChatRequest(p)
	return nil
}

// StrangerFound is sent to each side of a new pairing.
type StrangerFound struct {
	RoomID  string         `json:"roomId"`
	Partner PartnerSummary `json:"partner"`
}

// UserTyping is relayed to the partner of the typing user.
type UserTyping struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorPayload is the generic error frame.
type ErrorPayload struct {
	Message string `json:"message"`
}

// StatsUpdate is the public counters frame.
type StatsUpdate struct {
	OnlineUsers int `json:"onlineUsers"`
	ActiveChats int `json:"activeChats"`
}

// Stats is a point-in-time snapshot of the hub counters.
type Stats struct {
	OnlineUsers       int       `json:"onlineUsers"`
	WaitingUsers      int       `json:"waitingUsers"`
	ActiveChats       int       `json:"activeChats"`
	TotalChatsCreated int       `json:"totalChatsCreated"`
	TakenAt           time.Time `json:"takenAt"`
}

// Update returns the subset of counters pushed to clients.
func (s Stats) Update() StatsUpdate {
	return StatsUpdate{OnlineUsers: s.OnlineUsers, ActiveChats: s.ActiveChats}
}
