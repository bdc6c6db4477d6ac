package app

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/ai"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/chat"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/sentiment"
)

// Components holds the long-lived services shared by every session.
type Components struct {
	Analyzer   *sentiment.Analyzer
	ChatModel  model.BaseChatModel
	Generator  *ai.Generator
	Summarizer *ai.Summarizer
	Factory    chat.Factory
}

// Build 按配置组装情感分析器、聊天模型以及回复/摘要链。
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	analyzer := sentiment.NewAnalyzerFromConfig(ctx, cfg.Sentiment)
	return BuildWithModel(ctx, cfg, analyzer, nil)
}

// BuildWithModel is Build with an injected analyzer and, optionally, chat model.
func BuildWithModel(ctx context.Context, cfg *config.Config, analyzer *sentiment.Analyzer, chatModel model.BaseChatModel) (*Components, error) {
	if chatModel == nil {
		var err error
		chatModel, err = ai.NewChatModel(ctx, cfg.AI)
		if err != nil {
			return nil, err
		}
	}

	generator, err := ai.NewGenerator(ctx, chatModel)
	if err != nil {
		return nil, fmt.Errorf("build reply chain: %w", err)
	}
	summarizer, err := ai.NewSummarizer(ctx, chatModel)
	if err != nil {
		return nil, fmt.Errorf("build summary chain: %w", err)
	}

	return &Components{
		Analyzer:   analyzer,
		ChatModel:  chatModel,
		Generator:  generator,
		Summarizer: summarizer,
		Factory: chat.Factory{
			Analyzer:        analyzer,
			Generator:       generator,
			Summarizer:      summarizer,
			DefaultStrategy: cfg.Memory.Strategy,
			Window:          cfg.Memory.Window,
			Timeout:         cfg.AI.Timeout,
			Provider:        string(cfg.AI.Provider),
			Model:           cfg.AI.ModelName(),
		},
	}, nil
}
