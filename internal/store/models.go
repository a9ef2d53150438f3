package store

import "time"

// Message kinds persisted in the messages table
const (
	MessageTypeText       = "text"
	MessageTypeSystem     = "system"
	MessageTypeAIResponse = "ai_response"
)

// User is a registered account
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Role is an AI persona owned by a user. When AIInstructions is set,
// messages addressed to the role trigger a completion.
type Role struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Name           string    `json:"name"`
	Avatar         string    `json:"avatar"`
	Description    *string   `json:"description"`
	AIInstructions *string   `json:"ai_instructions"`
	CreatedAt      time.Time `json:"created_at"`
}

// Room is a named chat channel
type Room struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one persisted chat record. Immutable after creation.
type Message struct {
	ID          int64     `json:"id"`
	RoomID      int64     `json:"room_id"`
	UserID      int64     `json:"user_id"`
	RoleID      *int64    `json:"role_id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	Timestamp   time.Time `json:"timestamp"`
}
