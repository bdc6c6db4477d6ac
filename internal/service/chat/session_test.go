package chat_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	modelchat "github.com/zhouzirui/sentiment-chat/backend/internal/model/chat"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/ai"
	chat "github.com/zhouzirui/sentiment-chat/backend/internal/service/chat"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/memory"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/sentiment"
)

// scriptedModel answers with canned replies and records each request.
type scriptedModel struct {
	mu       sync.Mutex
	replies  []string
	err      error
	block    bool
	requests [][]*schema.Message
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.requests = append(m.requests, input)
	n := len(m.requests)
	err, block := m.err, m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	reply := "ok"
	if n <= len(m.replies) {
		reply = m.replies[n-1]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func newTestSession(t *testing.T, m *scriptedModel, timeout time.Duration) *chat.Session {
	t.Helper()
	gen, err := ai.NewGenerator(context.Background(), m)
	if err != nil {
		t.Fatalf("NewGenerator err: %v", err)
	}
	analyzer := sentiment.NewAnalyzer(nil, sentiment.NewLexiconClassifier())
	return chat.NewSession("session-1", analyzer, gen, memory.NewBuffer(0), chat.SessionOptions{
		Timeout:  timeout,
		Provider: "gemini",
	})
}

func TestSessionTwoTurnConversation(t *testing.T) {
	m := &scriptedModel{replies: []string{"That's wonderful to hear!", "I'm so sorry, that sounds stressful."}}
	session := newTestSession(t, m, time.Second)
	ctx := context.Background()

	first, err := session.SendMessage(ctx, "I am feeling great!")
	if err != nil {
		t.Fatalf("first turn err: %v", err)
	}
	if first.Sentiment.Label != sentiment.Positive || first.Text != "That's wonderful to hear!" {
		t.Fatalf("unexpected first reply %+v", first)
	}

	second, err := session.SendMessage(ctx, "But then my computer crashed and I lost all my work.")
	if err != nil {
		t.Fatalf("second turn err: %v", err)
	}
	if second.Sentiment.Label != sentiment.Negative {
		t.Fatalf("expected NEGATIVE, got %+v", second.Sentiment)
	}

	req := m.requests[1]
	if len(req) != 4 {
		t.Fatalf("expected 4 messages in second request, got %d", len(req))
	}
	if req[0].Role != schema.User || req[0].Content != "I am feeling great!" {
		t.Fatalf("unexpected first history message %+v", req[0])
	}
	if req[1].Role != schema.Assistant || req[1].Content != "That's wonderful to hear!" {
		t.Fatalf("unexpected second history message %+v", req[1])
	}
	if req[2].Role != schema.System || !strings.HasSuffix(req[2].Content, "Current user sentiment: NEGATIVE") {
		t.Fatalf("unexpected instruction %+v", req[2])
	}
	if req[3].Role != schema.User || req[3].Content != "But then my computer crashed and I lost all my work." {
		t.Fatalf("unexpected query %+v", req[3])
	}

	transcript := session.Transcript()
	if len(transcript) != 4 {
		t.Fatalf("expected 2N = 4 turns, got %d", len(transcript))
	}
	for i, turn := range transcript {
		want := modelchat.RoleUser
		if i%2 == 1 {
			want = modelchat.RoleAssistant
		}
		if turn.Role != want {
			t.Fatalf("turn %d: role %s, want %s", i, turn.Role, want)
		}
	}
	if transcript[0].Sentiment != string(sentiment.Positive) || transcript[2].Sentiment != string(sentiment.Negative) {
		t.Fatalf("user turns should carry their label: %+v", transcript)
	}
}

func TestSessionFailureCommitsNothing(t *testing.T) {
	m := &scriptedModel{replies: []string{"hi!"}}
	session := newTestSession(t, m, time.Second)
	ctx := context.Background()

	if _, err := session.SendMessage(ctx, "hello"); err != nil {
		t.Fatalf("first turn err: %v", err)
	}

	boom := errors.New("invalid api key")
	m.mu.Lock()
	m.err = boom
	m.mu.Unlock()

	_, err := session.SendMessage(ctx, "are you there?")
	var genErr *chat.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if !strings.Contains(err.Error(), boom.Error()) {
		t.Fatalf("expected provider cause in error, got %v", err)
	}
	if got := len(session.Transcript()); got != 2 {
		t.Fatalf("history changed after failure: %d turns", got)
	}

	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
	if _, err := session.SendMessage(ctx, "try again"); err != nil {
		t.Fatalf("session should stay usable: %v", err)
	}
	if got := len(session.Transcript()); got != 4 {
		t.Fatalf("expected 4 turns, got %d", got)
	}
}

func TestSessionTimeout(t *testing.T) {
	m := &scriptedModel{block: true}
	session := newTestSession(t, m, 20*time.Millisecond)

	_, err := session.SendMessage(context.Background(), "hello?")
	var genErr *chat.GenerationError
	if !errors.As(err, &genErr) || !genErr.Timeout() {
		t.Fatalf("expected timeout GenerationError, got %v", err)
	}
	if len(session.Transcript()) != 0 {
		t.Fatal("expected no committed turns after timeout")
	}
}

func TestSessionRejectsEmptyMessage(t *testing.T) {
	m := &scriptedModel{}
	session := newTestSession(t, m, time.Second)

	if _, err := session.SendMessage(context.Background(), "   "); !errors.Is(err, chat.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if len(m.requests) != 0 {
		t.Fatal("model should not be called for empty input")
	}
}

type failingSummarizer struct{}

func (failingSummarizer) Summarize(context.Context, string, string) (string, error) {
	return "", errors.New("summary provider down")
}

func TestSessionSummaryFailureIsGenerationError(t *testing.T) {
	m := &scriptedModel{replies: []string{"hello!"}}
	gen, err := ai.NewGenerator(context.Background(), m)
	if err != nil {
		t.Fatalf("NewGenerator err: %v", err)
	}
	store := memory.NewSummary(failingSummarizer{})
	session := chat.NewSession("s", sentiment.NewAnalyzer(nil, sentiment.NewLexiconClassifier()), gen, store, chat.SessionOptions{})

	if _, err := session.SendMessage(context.Background(), "first"); err != nil {
		t.Fatalf("first turn err: %v", err)
	}
	_, err = session.SendMessage(context.Background(), "second")
	var genErr *chat.GenerationError
	if !errors.As(err, &genErr) || genErr.Stage != "memory" {
		t.Fatalf("expected memory-stage GenerationError, got %v", err)
	}
	if len(session.Transcript()) != 2 {
		t.Fatalf("unexpected transcript length %d", len(session.Transcript()))
	}
}

func TestSessionSerializesTurns(t *testing.T) {
	m := &scriptedModel{}
	session := newTestSession(t, m, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = session.SendMessage(context.Background(), "hello")
		}()
	}
	wg.Wait()

	transcript := session.Transcript()
	if len(transcript) != 16 {
		t.Fatalf("expected 16 turns, got %d", len(transcript))
	}
	for i := 0; i < len(transcript); i += 2 {
		if transcript[i].Role != modelchat.RoleUser || transcript[i+1].Role != modelchat.RoleAssistant {
			t.Fatalf("turns interleaved at %d", i)
		}
	}
}
