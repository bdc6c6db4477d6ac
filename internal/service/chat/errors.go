package chat

import (
	"context"
	"errors"
	"fmt"
)

const (
	// Greeting 是前端在会话开始时展示的问候语。
	Greeting = "Hello! How can I help you today?"
	// FallbackReply is shown in place of a reply when generation fails.
	FallbackReply = "I'm sorry, I encountered an error. Please try again."
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message content is required")
)

// GenerationError reports a turn that could not produce a reply. The
// session history is unchanged when it is returned.
type GenerationError struct {
	SessionID string
	Stage     string // "memory" or "generate"
	TimedOut  bool
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("session %s: %s failed: %v", e.SessionID, e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Timeout reports whether the turn ran out of time.
func (e *GenerationError) Timeout() bool {
	return e.TimedOut || errors.Is(e.Err, context.DeadlineExceeded)
}

// IsGenerationError reports whether err came from a failed reply.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
