package utils

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// ErrorBody 是所有接口统一的错误响应格式。
// Reply 仅在生成失败时携带给用户展示的兜底回复。
type ErrorBody struct {
	Error     string `json:"error"`
	Reply     string `json:"reply,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

// RespondError 发送错误响应，附带请求 ID 便于对照日志排查。
func RespondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondErrorBody(w, r, status, ErrorBody{Error: message})
}

// RespondFallback 在上游生成失败时返回错误以及可直接展示的兜底回复。
func RespondFallback(w http.ResponseWriter, r *http.Request, status int, message, reply string) {
	respondErrorBody(w, r, status, ErrorBody{Error: message, Reply: reply})
}

func respondErrorBody(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	if r != nil {
		body.RequestID = middleware.GetReqID(r.Context())
	}
	if status >= http.StatusInternalServerError {
		log.Warn().Int("status", status).Str("request_id", body.RequestID).Str("error", body.Error).Msg("request failed")
	}
	RespondJSON(w, status, body)
}
