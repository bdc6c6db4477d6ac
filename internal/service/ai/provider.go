package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/infra/metrics"
)

// NewChatModel 根据配置的服务商创建聊天模型，并包上一层耗时统计。
func NewChatModel(ctx context.Context, cfg config.AIConfig) (model.BaseChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		inner model.BaseChatModel
		err   error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		inner, err = NewGeminiChatModel(ctx, GeminiConfig{
			APIKey:      cfg.GoogleAPIKey,
			BaseURL:     cfg.GeminiBaseURL,
			Model:       cfg.ModelName(),
			Temperature: cfg.TemperatureOrDefault(),
			MaxTokens:   cfg.MaxTokens,
		})
	case config.ProviderOpenAI:
		inner, err = NewOpenAIChatModel(OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.ModelName(),
			Temperature: cfg.TemperatureOrDefault(),
			MaxTokens:   cfg.MaxTokens,
		})
	case config.ProviderArk:
		inner, err = newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", cfg.Provider, err)
	}

	log.Info().Str("provider", string(cfg.Provider)).Str("model", cfg.ModelName()).Msg("chat model ready")
	return Instrument(inner, string(cfg.Provider), cfg.ModelName()), nil
}

func newArkChatModel(ctx context.Context, c config.AIConfig) (model.BaseChatModel, error) {
	temperature := float32(c.TemperatureOrDefault())

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.ModelName(),
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
}

// instrumentedModel records latency and outcome of every provider call.
type instrumentedModel struct {
	inner    model.BaseChatModel
	provider string
	model    string
}

// Instrument wraps m so each call is timed and logged under provider/modelName.
func Instrument(m model.BaseChatModel, provider, modelName string) model.BaseChatModel {
	return &instrumentedModel{inner: m, provider: provider, model: modelName}
}

func (m *instrumentedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	start := time.Now()
	out, err := m.inner.Generate(ctx, input, opts...)
	m.observe(start, len(input), err)
	return out, err
}

func (m *instrumentedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	start := time.Now()
	out, err := m.inner.Stream(ctx, input, opts...)
	m.observe(start, len(input), err)
	return out, err
}

func (m *instrumentedModel) observe(start time.Time, messages int, err error) {
	elapsed := time.Since(start)
	metrics.ObserveAICall(m.provider, m.model, elapsed, err == nil)

	evt := log.Debug()
	if err != nil {
		evt = log.Warn().Err(err)
	}
	evt.Str("provider", m.provider).
		Str("model", m.model).
		Int("messages", messages).
		Dur("elapsed", elapsed).
		Msg("ai call")
}
