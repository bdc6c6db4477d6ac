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
	"github.com/rs/zerolog/log"
)

// Generator produces sentiment-aware replies through an eino prompt chain.
type Generator struct {
	template prompt.ChatTemplate
	chain    compose.Runnable[map[string]any, *schema.Message]
}

// NewGenerator compiles the reply chain: history, then the sentiment
// instruction, then the new user message.
func NewGenerator(ctx context.Context, chatModel model.BaseChatModel) (*Generator, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("history", true),
		schema.SystemMessage(sentimentSystemPrompt),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Generator{template: promptTemplate, chain: runnable}, nil
}

// Generate runs one synchronous completion and returns the reply text.
func (g *Generator) Generate(ctx context.Context, history []*schema.Message, label, query string) (string, error) {
	response, err := g.chain.Invoke(ctx, chainInput(history, label, query))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	reply := strings.TrimSpace(response.Content)
	if reply == "" {
		return "", errors.New("model returned an empty reply")
	}

	log.Debug().Str("sentiment", label).Int("history", len(history)).Int("length", len(reply)).Msg("generated reply")
	return reply, nil
}

// BuildMessages renders the request the chain would send, without calling a model.
func (g *Generator) BuildMessages(ctx context.Context, history []*schema.Message, label, query string) ([]*schema.Message, error) {
	return g.template.Format(ctx, chainInput(history, label, query))
}

func chainInput(history []*schema.Message, label, query string) map[string]any {
	if history == nil {
		history = []*schema.Message{}
	}
	return map[string]any{
		"history":   history,
		"sentiment": label,
		"query":     query,
	}
}
