package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhouzirui/sentiment-chat/backend/internal/handler/chat"
	"github.com/zhouzirui/sentiment-chat/backend/internal/handler/widget"
	middlewarePkg "github.com/zhouzirui/sentiment-chat/backend/internal/middleware"
	chatService "github.com/zhouzirui/sentiment-chat/backend/internal/service/chat"
	"github.com/zhouzirui/sentiment-chat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", widget.Handler().ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	chatHandler := chat.New(chatSvc)
	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	return r
}
