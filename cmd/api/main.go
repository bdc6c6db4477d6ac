package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/sentiment-chat/backend/internal/app"
	"github.com/zhouzirui/sentiment-chat/backend/internal/config"
	"github.com/zhouzirui/sentiment-chat/backend/internal/handler"
	"github.com/zhouzirui/sentiment-chat/backend/internal/infra/logging"
	"github.com/zhouzirui/sentiment-chat/backend/internal/infra/metrics"
	"github.com/zhouzirui/sentiment-chat/backend/internal/service/chat"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file (defaults to $CONFIG_FILE)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration (set GOOGLE_API_KEY or OPENAI_API_KEY and AI_PROVIDER)")
	}

	logging.New(cfg.Log)
	metrics.MustRegister()
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file, continuing with system environment variables only")
	}

	components, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize chatbot")
	}
	log.Info().
		Str("provider", string(cfg.AI.Provider)).
		Str("model", cfg.AI.ModelName()).
		Str("memory", string(cfg.Memory.Strategy)).
		Str("sentiment", components.Analyzer.Active()).
		Msg("chatbot initialized")

	chatService := chat.NewService(components.Factory)
	router := handler.NewRouter(chatService)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("sentiment chat server listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
