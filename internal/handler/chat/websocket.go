package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	chatService "github.com/zhouzirui/sentiment-chat/backend/internal/service/chat"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/sentiment"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string            `json:"type"`
	SessionID string            `json:"sessionId,omitempty"`
	Greeting  string            `json:"greeting,omitempty"`
	Reply     string            `json:"reply,omitempty"`
	Sentiment *sentiment.Result `json:"sentiment,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接，同一连接上的消息按顺序逐条处理。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.With().Str("session_id", sessionID).Logger()
	logger.Info().Msg("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go pingLoop(ctx, conn)

	send(conn, outgoingMessage{Type: "connected", SessionID: sessionID, Greeting: chatService.Greeting})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "text":
			if strings.TrimSpace(msg.Text) == "" {
				send(conn, outgoingMessage{Type: "error", Error: "text is required"})
				continue
			}
			h.handleText(ctx, conn, sessionID, msg.Text)
		default:
			send(conn, outgoingMessage{Type: "error", Error: "unsupported message type: " + msg.Type})
		}
	}
}

func (h *Handler) handleText(ctx context.Context, conn *websocket.Conn, sessionID, text string) {
	reply, err := h.chatSvc.SendMessage(ctx, sessionID, text)
	switch {
	case err == nil:
		send(conn, outgoingMessage{Type: "reply", Reply: reply.Text, Sentiment: &reply.Sentiment})
	case chatService.IsGenerationError(err):
		send(conn, outgoingMessage{Type: "error", Reply: chatService.FallbackReply, Error: "reply generation failed"})
	default:
		send(conn, outgoingMessage{Type: "error", Error: err.Error()})
	}
}

func send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().Unix()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Warn().Err(err).Str("type", msg.Type).Msg("websocket write failed")
	}
}

// pingLoop 定期发送ping消息；WriteControl 可与其他写操作并发调用。
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
