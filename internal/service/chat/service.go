package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/infra/metrics"
	"github.com/zhouzirui/sentiment-chat/backend/internal/model/chat"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/memory"
)

// Factory closes over the components shared by every session. Each session
// still gets its own history store.
type Factory struct {
	Analyzer        Analyzer
	Generator       Generator
	Summarizer      memory.Summarizer
	DefaultStrategy config.MemoryStrategy
	Window          int
	Timeout         time.Duration
	Provider        string
	Model           string
}

// NewSession builds a session with a fresh history store. An empty strategy
// uses DefaultStrategy.
func (f Factory) NewSession(id string, strategy config.MemoryStrategy) (*Session, error) {
	if strategy == "" {
		strategy = f.DefaultStrategy
	}
	strategy, err := config.ParseMemoryStrategy(string(strategy))
	if err != nil {
		return nil, err
	}

	history, err := memory.New(strategy, f.Window, f.Summarizer)
	if err != nil {
		return nil, fmt.Errorf("create history: %w", err)
	}

	return NewSession(id, f.Analyzer, f.Generator, history, SessionOptions{
		Timeout:  f.Timeout,
		Provider: f.Provider,
		Model:    f.Model,
	}), nil
}

// Service encapsulates conversation state management.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  Factory
}

// NewService bootstraps the in-memory chat service.
func NewService(factory Factory) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// CreateSession provisions an anonymous session with its own history.
func (s *Service) CreateSession(_ context.Context, strategy config.MemoryStrategy) (chat.SessionInfo, error) {
	session, err := s.factory.NewSession(uuid.NewString(), strategy)
	if err != nil {
		return chat.SessionInfo{}, err
	}

	s.mu.Lock()
	s.sessions[session.Info().ID] = session
	s.mu.Unlock()

	metrics.SessionOpened()
	log.Info().Str("session_id", session.Info().ID).Str("memory", session.Info().MemoryStrategy).Msg("session created")
	return session.Info(), nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// DeleteSession drops a session and its history.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	metrics.SessionClosed()
	log.Info().Str("session_id", sessionID).Msg("session deleted")
	return nil
}

// SendMessage runs one turn on the identified session.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (Reply, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}
	return session.SendMessage(ctx, text)
}

// LoadTranscript returns stored turns for the provided session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Transcript(), nil
}
