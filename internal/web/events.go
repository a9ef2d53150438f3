package web

import (
	"time"

	"github.com/inkognitroz/Virtual-Company/internal/store"
)

// Event types pushed to chat sockets
const (
	EventTypeJoin    = "join"
	EventTypeLeave   = "leave"
	EventTypeMessage = "message"
)

// ChatFrame is one inbound chat payload. Transient; not retained after
// processing.
type ChatFrame struct {
	Content     string `json:"content"`
	RoleID      *int64 `json:"role_id,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	Model       string `json:"model,omitempty"`
	// APIKey overrides the server's provider credential for this call only
	APIKey string `json:"api_key,omitempty"`
}

// PresenceEvent announces a user joining or leaving a room
type PresenceEvent struct {
	Type   string `json:"type"`
	User   string `json:"user"`
	RoomID int64  `json:"room_id"`
}

// MessageEvent carries one persisted message to the room. The id and
// timestamp are the ones the store assigned.
type MessageEvent struct {
	Type        string `json:"type"`
	ID          int64  `json:"id"`
	User        string `json:"user"`
	RoleID      *int64 `json:"role_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
	Timestamp   string `json:"timestamp"`
}

func newPresenceEvent(eventType, displayName string, roomID int64) PresenceEvent {
	return PresenceEvent{Type: eventType, User: displayName, RoomID: roomID}
}

func newMessageEvent(msg *store.Message, displayName string) MessageEvent {
	ev := MessageEvent{
		Type:      EventTypeMessage,
		ID:        msg.ID,
		User:      displayName,
		RoleID:    msg.RoleID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp.Format(time.RFC3339),
	}
	if msg.MessageType == store.MessageTypeAIResponse {
		ev.MessageType = msg.MessageType
	}
	return ev
}
