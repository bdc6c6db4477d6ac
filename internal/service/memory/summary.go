package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/model/chat"
)

// Summary keeps a rolling summary instead of replaying raw turns. Turns
// appended since the last Render are folded in lazily, so the extra model
// call happens inside Render.
type Summary struct {
	mu         sync.Mutex
	summarizer Summarizer
	turns      []chat.Turn
	folded     int
	summary    string
}

func NewSummary(summarizer Summarizer) *Summary {
	return &Summary{summarizer: summarizer, turns: make([]chat.Turn, 0, 16)}
}

func (s *Summary) Append(turns ...chat.Turn) {
	s.mu.Lock()
	s.turns = append(s.turns, turns...)
	s.mu.Unlock()
}

// Render folds pending turns into the summary and returns it as a single
// system message. A failed fold changes nothing.
func (s *Summary) Render(ctx context.Context) ([]*schema.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pending := s.turns[s.folded:]; len(pending) > 0 {
		updated, err := s.summarizer.Summarize(ctx, s.summary, formatLines(pending))
		if err != nil {
			return nil, fmt.Errorf("update conversation summary: %w", err)
		}
		s.summary = updated
		s.folded = len(s.turns)
	}

	if s.summary == "" {
		return nil, nil
	}
	return []*schema.Message{schema.SystemMessage(s.summary)}, nil
}

func (s *Summary) Turns() []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]chat.Turn, len(s.turns))
	copy(copied, s.turns)
	return copied
}

// Current returns the summary as of the last successful Render.
func (s *Summary) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func (s *Summary) Strategy() config.MemoryStrategy { return config.MemorySummary }
