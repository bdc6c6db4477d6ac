package chat

import "time"

// SessionInfo describes a live conversation held in memory.
type SessionInfo struct {
	ID             string    `json:"id"`
	MemoryStrategy string    `json:"memoryType"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	CreatedAt      time.Time `json:"createdAt"`
}
