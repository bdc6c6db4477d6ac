package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Summarizer folds new conversation lines into a running summary.
type Summarizer struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func NewSummarizer(ctx context.Context, chatModel model.BaseChatModel) (*Summarizer, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(prompt.FromMessages(schema.FString, schema.UserMessage(summaryPrompt)))
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile summary chain: %w", err)
	}
	return &Summarizer{chain: runnable}, nil
}

// Summarize returns the previous summary extended with newLines.
func (s *Summarizer) Summarize(ctx context.Context, previousSummary, newLines string) (string, error) {
	out, err := s.chain.Invoke(ctx, map[string]any{
		"summary":   previousSummary,
		"new_lines": newLines,
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize conversation: %w", err)
	}

	summary := strings.TrimSpace(out.Content)
	if summary == "" {
		return "", errors.New("model returned an empty summary")
	}
	return summary, nil
}
