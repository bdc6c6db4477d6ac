package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/sentiment-chat/backend/internal/service/chat"
	"github.com/zhouzirui/sentiment-chat/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Delete("/session/{sessionID}", h.handleDeleteSession)
	r.Get("/session/{sessionID}/messages", h.handleTranscript)
	r.Post("/session/{sessionID}/messages", h.handleSendMessage)
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type createSessionResponse struct {
	chat.SessionInfo
	Greeting string `json:"greeting"`
}

// handleCreateSession 创建会话，请求体可以为空。
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MemoryType string `json:"memoryType"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	info, err := h.chatSvc.CreateSession(r.Context(), config.MemoryStrategy(payload.MemoryType))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, createSessionResponse{
		SessionInfo: info,
		Greeting:    chatService.Greeting,
	})
}

// handleDeleteSession 重置会话，丢弃全部历史。
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	turns, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": turns})
}

// handleSendMessage 处理一轮对话
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), payload.Content)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

// respondServiceError maps service errors to status codes. Generation
// failures still carry the fallback reply so the widget can show it.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrEmptyMessage),
		errors.Is(err, config.ErrUnknownMemoryStrategy):
		utils.RespondError(w, r, http.StatusBadRequest, err.Error())
	case chatService.IsGenerationError(err):
		utils.RespondFallback(w, r, http.StatusBadGateway, "reply generation failed", chatService.FallbackReply)
	default:
		log.Error().Err(err).Msg("chat request failed")
		utils.RespondError(w, r, http.StatusInternalServerError, "internal error")
	}
}
