package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/model/chat"
)

// HistoryStore 保存单个会话的全部对话记录，并决定哪些上下文进入提示词。
// A store belongs to exactly one session and is not shared.
type HistoryStore interface {
	Append(turns ...chat.Turn)
	Render(ctx context.Context) ([]*schema.Message, error)
	Turns() []chat.Turn
	Strategy() config.MemoryStrategy
}

// Summarizer folds new conversation lines into an existing summary.
type Summarizer interface {
	Summarize(ctx context.Context, previousSummary, newLines string) (string, error)
}

// New builds the store for strategy. The summarizer is only required for
// the summary strategy.
func New(strategy config.MemoryStrategy, window int, summarizer Summarizer) (HistoryStore, error) {
	switch strategy {
	case config.MemoryBuffer:
		return NewBuffer(window), nil
	case config.MemorySummary:
		if summarizer == nil {
			return nil, fmt.Errorf("summary memory requires a summarizer")
		}
		return NewSummary(summarizer), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownMemoryStrategy, strategy)
	}
}

func toMessage(t chat.Turn) *schema.Message {
	if t.Role == chat.RoleAssistant {
		return schema.AssistantMessage(t.Content, nil)
	}
	return schema.UserMessage(t.Content)
}

// formatLines renders turns as "Human: ..." / "AI: ..." lines.
func formatLines(turns []chat.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		prefix := "Human"
		if t.Role == chat.RoleAssistant {
			prefix = "AI"
		}
		lines = append(lines, prefix+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}
