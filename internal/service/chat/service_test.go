package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/ai"
	chat "github.com/zhouzirui/sentiment-chat/backend/internal/service/chat"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/sentiment"
)

func newTestService(t *testing.T, m *scriptedModel) *chat.Service {
	t.Helper()
	ctx := context.Background()
	gen, err := ai.NewGenerator(ctx, m)
	if err != nil {
		t.Fatalf("NewGenerator err: %v", err)
	}
	sum, err := ai.NewSummarizer(ctx, m)
	if err != nil {
		t.Fatalf("NewSummarizer err: %v", err)
	}
	return chat.NewService(chat.Factory{
		Analyzer:        sentiment.NewAnalyzer(nil, sentiment.NewLexiconClassifier()),
		Generator:       gen,
		Summarizer:      sum,
		DefaultStrategy: config.MemoryBuffer,
		Window:          20,
		Timeout:         time.Second,
		Provider:        "gemini",
		Model:           "gemini-2.5-flash-lite",
	})
}

func TestServiceGetSession(t *testing.T) {
	svc := newTestService(t, &scriptedModel{})
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if got.Info().ID != info.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.Info().ID, info.ID)
	}
	if got.Info().MemoryStrategy != string(config.MemoryBuffer) {
		t.Fatalf("unexpected memory strategy: got %s", got.Info().MemoryStrategy)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := newTestService(t, &scriptedModel{})
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, "missing", "hi"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestServiceRejectsUnknownStrategy(t *testing.T) {
	svc := newTestService(t, &scriptedModel{})
	if _, err := svc.CreateSession(context.Background(), "vector"); !errors.Is(err, config.ErrUnknownMemoryStrategy) {
		t.Fatalf("expected ErrUnknownMemoryStrategy, got %v", err)
	}
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc := newTestService(t, &scriptedModel{})
	ctx := context.Background()

	a, _ := svc.CreateSession(ctx, config.MemoryBuffer)
	b, _ := svc.CreateSession(ctx, config.MemorySummary)

	if _, err := svc.SendMessage(ctx, a.ID, "hello from a"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	ta, _ := svc.LoadTranscript(ctx, a.ID)
	tb, _ := svc.LoadTranscript(ctx, b.ID)
	if len(ta) != 2 || len(tb) != 0 {
		t.Fatalf("histories leaked: a=%d b=%d", len(ta), len(tb))
	}
	if b.MemoryStrategy != string(config.MemorySummary) {
		t.Fatalf("unexpected strategy %s", b.MemoryStrategy)
	}
}

func TestServiceDeleteSession(t *testing.T) {
	svc := newTestService(t, &scriptedModel{})
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}
	if _, err := svc.LoadTranscript(ctx, info.ID); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := svc.DeleteSession(ctx, info.ID); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}
