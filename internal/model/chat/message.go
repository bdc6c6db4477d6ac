package chat

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Role 标识一条对话记录的说话方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one recorded message of a conversation. Turns are only ever
// appended, never edited.
type Turn struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Sentiment      string    `json:"sentiment,omitempty"`
	SentimentScore float64   `json:"sentimentScore,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewTurn stamps a turn with a sortable identifier and the current UTC time.
func NewTurn(sessionID string, role Role, content string) Turn {
	return Turn{
		ID:        ulid.Make().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
