package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/sentiment-chat/backend/internal/infra/logging"
	"github.com/zhouzirui/sentiment-chat/backend/internal/infra/metrics"
	"github.com/zhouzirui/sentiment-chat/backend/internal/model/chat"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/memory"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/sentiment"
)

// Analyzer labels the sentiment of user text and never fails.
type Analyzer interface {
	Analyze(ctx context.Context, text string) sentiment.Result
}

// Generator produces a reply from rendered history, a sentiment label and the new query.
type Generator interface {
	Generate(ctx context.Context, history []*schema.Message, label, query string) (string, error)
}

// SessionOptions 描述会话级别的可选参数。
type SessionOptions struct {
	// Timeout bounds history rendering plus generation for one turn; 0 disables it.
	Timeout  time.Duration
	Provider string
	Model    string
}

// Reply is the outcome of one successful turn.
type Reply struct {
	Text      string           `json:"reply"`
	Sentiment sentiment.Result `json:"sentiment"`
}

// Session owns one conversation. Turns are processed one at a time.
type Session struct {
	mu        sync.Mutex
	info      chat.SessionInfo
	analyzer  Analyzer
	generator Generator
	history   memory.HistoryStore
	timeout   time.Duration
}

func NewSession(id string, analyzer Analyzer, generator Generator, history memory.HistoryStore, opts SessionOptions) *Session {
	return &Session{
		info: chat.SessionInfo{
			ID:             id,
			MemoryStrategy: string(history.Strategy()),
			Provider:       opts.Provider,
			Model:          opts.Model,
			CreatedAt:      time.Now().UTC(),
		},
		analyzer:  analyzer,
		generator: generator,
		history:   history,
		timeout:   opts.Timeout,
	}
}

// SendMessage 完成一轮对话：情感分析、渲染历史、生成回复，成功后才写入历史。
func (s *Session) SendMessage(ctx context.Context, text string) (Reply, error) {
	if strings.TrimSpace(text) == "" {
		return Reply{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.analyzer.Analyze(ctx, text)
	log.Info().
		Str("session_id", s.info.ID).
		Str("sentiment", string(result.Label)).
		Float64("score", result.Score).
		Str("source", result.Source).
		Str("preview", logging.Preview(text, 64)).
		Msg("detected sentiment")

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	history, err := s.history.Render(callCtx)
	if err != nil {
		return Reply{}, s.fail(callCtx, "memory", err)
	}

	text = strings.TrimSpace(text)
	reply, err := s.generator.Generate(callCtx, history, string(result.Label), text)
	if err != nil {
		return Reply{}, s.fail(callCtx, "generate", err)
	}

	userTurn := chat.NewTurn(s.info.ID, chat.RoleUser, text)
	userTurn.Sentiment = string(result.Label)
	userTurn.SentimentScore = result.Score
	s.history.Append(userTurn, chat.NewTurn(s.info.ID, chat.RoleAssistant, reply))

	metrics.ObserveTurn(s.info.Provider, true)
	return Reply{Text: reply, Sentiment: result}, nil
}

func (s *Session) fail(callCtx context.Context, stage string, err error) error {
	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
	metrics.ObserveTurn(s.info.Provider, false)
	log.Error().Err(err).Str("session_id", s.info.ID).Str("stage", stage).Bool("timeout", timedOut).Msg("turn failed")
	return &GenerationError{SessionID: s.info.ID, Stage: stage, TimedOut: timedOut, Err: err}
}

// Transcript returns a copy of every committed turn in order.
func (s *Session) Transcript() []chat.Turn {
	return s.history.Turns()
}

func (s *Session) Info() chat.SessionInfo {
	return s.info
}
