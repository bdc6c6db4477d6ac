package memory

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/model/chat"
)

// Buffer replays raw turns verbatim. The full transcript is kept; only the
// last window turns are rendered (0 renders everything), starting at a
// user turn.
type Buffer struct {
	mu     sync.RWMutex
	turns  []chat.Turn
	window int
}

func NewBuffer(window int) *Buffer {
	if window < 0 {
		window = 0
	}
	return &Buffer{turns: make([]chat.Turn, 0, 16), window: window}
}

func (b *Buffer) Append(turns ...chat.Turn) {
	b.mu.Lock()
	b.turns = append(b.turns, turns...)
	b.mu.Unlock()
}

func (b *Buffer) Render(_ context.Context) ([]*schema.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := 0
	if b.window > 0 && len(b.turns) > b.window {
		start = len(b.turns) - b.window
		// 窗口必须从用户发言开始，避免以孤立的助手回复开头。
		for start < len(b.turns) && b.turns[start].Role != chat.RoleUser {
			start++
		}
	}

	history := make([]*schema.Message, 0, len(b.turns)-start)
	for _, t := range b.turns[start:] {
		history = append(history, toMessage(t))
	}
	return history, nil
}

func (b *Buffer) Turns() []chat.Turn {
	b.mu.RLock()
	defer b.mu.RUnlock()
	copied := make([]chat.Turn, len(b.turns))
	copy(copied, b.turns)
	return copied
}

func (b *Buffer) Strategy() config.MemoryStrategy { return config.MemoryBuffer }
