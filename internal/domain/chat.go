package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one transcript entry. Author is "user" or "model".
type ChatMessage struct {
	ID        string
	SessionID string
	Author    string
	Text      string
	CreatedAt time.Time
}

// NewChatMessage stamps a new transcript entry with a fresh id.
func NewChatMessage(sessionID, author, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}
