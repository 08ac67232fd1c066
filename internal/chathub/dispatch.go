package chathub

import (
	"encoding/json"
	"log"
	"strangerchat/backend/internal/models"
)

// Dispatch decodes one inbound frame from c and routes it to its handler.
func (m *ManagerService) Dispatch(c Client, frame []byte) {
	connID := c.GetConnID()

	var in models.InboundEvent
	if err := json.Unmarshal(frame, &in); err != nil {
		log.Printf("Error decoding JSON from client %s: %v", connID, err)
		m.reply(c, "Malformed event")
		return
	}

	switch in.Name {
	case models.EventFindStranger:
		var req models.FindStrangerRequest
		if !decodePayload(in.Data, &req) {
			m.reply(c, "Failed to find stranger")
			return
		}
		m.FindStranger(connID, req)

	case models.EventSendMessage:
		var req models.SendMessageRequest
		if !decodePayload(in.Data, &req) {
			return
		}
		m.SendMessage(connID, req)

	case models.EventTyping:
		var req models.TypingRequest
		if !decodePayload(in.Data, &req) {
			return
		}
		m.Typing(connID, req)

	case models.EventEndChat:
		var req models.EndChatRequest
		if !decodePayload(in.Data, &req) {
			return
		}
		m.EndChat(connID, req)

	default:
		log.Printf("WARNING: unknown event %q from %s", in.Name, connID)
		m.reply(c, "Unknown event")
	}
}

// decodePayload treats a missing payload as an empty one.
func decodePayload(data json.RawMessage, v any) bool {
	if len(data) == 0 || string(data) == "null" {
		return true
	}
	return json.Unmarshal(data, v) == nil
}

func (m *ManagerService) reply(c Client, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendLocked(c, models.Event{Name: models.EventError, Data: models.ErrorPayload{Message: message}})
}
