package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// GeminiConfig configures the Google Gemini chat model.
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   *int
}

// GeminiChatModel adapts the Gemini generateContent API to eino's chat model.
type GeminiChatModel struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   *int
}

func NewGeminiChatModel(ctx context.Context, cfg GeminiConfig) (*GeminiChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: empty model name")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiChatModel{
		client:      c,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (g *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{Model: &g.model}, opts...)

	system, contents := toGeminiContents(input)
	if len(contents) == 0 {
		return nil, errors.New("gemini: no conversational messages")
	}

	temperature := float32(g.temperature)
	if options.Temperature != nil {
		temperature = *options.Temperature
	}
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       &temperature,
	}
	maxTokens := g.maxTokens
	if options.MaxTokens != nil {
		maxTokens = options.MaxTokens
	}
	if maxTokens != nil {
		genCfg.MaxOutputTokens = int32(*maxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, *options.Model, contents, genCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, errors.New("gemini: empty response")
	}
	return schema.AssistantMessage(text, nil), nil
}

// Stream 不做真正的增量输出，整段结果作为单个分片返回。
func (g *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := g.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// toGeminiContents moves system messages into a single system instruction
// and maps assistant turns to the "model" role.
func toGeminiContents(msgs []*schema.Message) (*genai.Content, []*genai.Content) {
	var (
		systemParts []*genai.Part
		contents    = make([]*genai.Content, 0, len(msgs))
	)
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if m.Role == schema.System {
			systemParts = append(systemParts, &genai.Part{Text: m.Content})
			continue
		}

		role := genai.RoleUser
		if m.Role == schema.Assistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  string(role),
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}
	return system, contents
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
