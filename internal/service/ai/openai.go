package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIConfig configures the OpenAI Chat Completions model.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   *int
}

// OpenAIChatModel adapts the Chat Completions API to eino's chat model.
type OpenAIChatModel struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   *int
}

func NewOpenAIChatModel(cfg OpenAIConfig) (*OpenAIChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: empty model name")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIChatModel{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (o *OpenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{Model: &o.model}, opts...)

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(*options.Model),
		Messages:    toOpenAIMessages(input),
		Temperature: openai.Float(o.temperature),
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(float64(*options.Temperature))
	}
	maxTokens := o.maxTokens
	if options.MaxTokens != nil {
		maxTokens = options.MaxTokens
	}
	if maxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*maxTokens))
	}
	if len(params.Messages) == 0 {
		return nil, errors.New("openai: no messages")
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("openai: empty response")
	}
	return schema.AssistantMessage(text, nil), nil
}

func (o *OpenAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := o.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func toOpenAIMessages(msgs []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(m.Content))
		case schema.Assistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
