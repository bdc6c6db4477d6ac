package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
)

func TestNewChatModelRequiresCredential(t *testing.T) {
	_, err := NewChatModel(context.Background(), config.AIConfig{
		Provider: config.ProviderGemini,
		Timeout:  1,
	})
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestToGeminiContents(t *testing.T) {
	system, contents := toGeminiContents([]*schema.Message{
		schema.UserMessage("hi"),
		schema.AssistantMessage("hello!", nil),
		schema.SystemMessage("Current user sentiment: POSITIVE"),
		schema.UserMessage("great day"),
	})

	if system == nil || len(system.Parts) != 1 || system.Parts[0].Text != "Current user sentiment: POSITIVE" {
		t.Fatalf("unexpected system instruction %+v", system)
	}
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	wantRoles := []string{"user", "model", "user"}
	for i, want := range wantRoles {
		if contents[i].Role != want {
			t.Fatalf("content %d: role %q, want %q", i, contents[i].Role, want)
		}
	}
}

func TestOpenAIChatModelGenerate(t *testing.T) {
	var captured struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "Happy to help!"}
			}]
		}`))
	}))
	defer srv.Close()

	m, err := NewOpenAIChatModel(OpenAIConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/v1/",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("NewOpenAIChatModel err: %v", err)
	}

	out, err := m.Generate(context.Background(), []*schema.Message{
		schema.UserMessage("hi"),
		schema.AssistantMessage("hello", nil),
		schema.SystemMessage("Current user sentiment: NEUTRAL"),
		schema.UserMessage("what's up?"),
	})
	if err != nil {
		t.Fatalf("Generate err: %v", err)
	}
	if out.Content != "Happy to help!" || out.Role != schema.Assistant {
		t.Fatalf("unexpected reply %+v", out)
	}

	if captured.Model != "gpt-4o-mini" || captured.Temperature != 0.7 {
		t.Fatalf("unexpected request model=%q temperature=%v", captured.Model, captured.Temperature)
	}
	wantRoles := []string{"user", "assistant", "system", "user"}
	if len(captured.Messages) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(captured.Messages))
	}
	for i, role := range wantRoles {
		if captured.Messages[i].Role != role {
			t.Fatalf("message %d: role %q, want %q", i, captured.Messages[i].Role, role)
		}
	}
}

func TestOpenAIChatModelEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`))
	}))
	defer srv.Close()

	m, err := NewOpenAIChatModel(OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/v1/", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("NewOpenAIChatModel err: %v", err)
	}
	if _, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

type stubModel struct {
	err error
}

func (s stubModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage("ok", nil), nil
}

func (s stubModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, s.err
}

func TestInstrumentPassesResultsThrough(t *testing.T) {
	wrapped := Instrument(stubModel{}, "gemini", "gemini-2.5-flash-lite")
	out, err := wrapped.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if err != nil || out.Content != "ok" {
		t.Fatalf("unexpected result %v %v", out, err)
	}

	boom := errors.New("boom")
	wrapped = Instrument(stubModel{err: boom}, "openai", "gpt-4o-mini")
	if _, err := wrapped.Generate(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
}
