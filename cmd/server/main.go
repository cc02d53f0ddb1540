package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dahui-ai/assistant-server-go/internal/config"
	"github.com/dahui-ai/assistant-server-go/internal/handler"
	"github.com/dahui-ai/assistant-server-go/internal/llm"
	"github.com/dahui-ai/assistant-server-go/internal/middleware"
	"github.com/dahui-ai/assistant-server-go/internal/service"
	"github.com/dahui-ai/assistant-server-go/internal/store"
	"github.com/dahui-ai/assistant-server-go/internal/tts"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("APP_ENV") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	codeStore, err := store.NewCodeStore(cfg.CodesFile(), cfg.AdminAccessCode)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open code store")
	}
	logStore, err := store.NewLogStore(cfg.LogsFile(), cfg.ChatLogLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open chat log store")
	}
	sessionTable := store.NewSessionTable(codeStore)
	log.Info().Str("dataDir", cfg.DataDir).Msg("stores ready")

	llmClient := llm.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	ttsClient := tts.NewClient(cfg.TTSBaseURL, cfg.TTSDefaultVoice)

	accessService := service.NewAccessService(codeStore, sessionTable, logStore)
	chatService := service.NewChatService(sessionTable, logStore, llmClient, ttsClient)

	loginRateLimiter := middleware.NewLoginRateLimiter()
	sessionMiddleware := middleware.NewSessionMiddleware(accessService)

	authHandler := handler.NewAuthHandler(accessService)
	chatHandler := handler.NewChatHandler(chatService)
	adminHandler := handler.NewAdminHandler(accessService)
	catalogHandler := handler.NewCatalogHandler(cfg.GeminiModel, cfg.TTSDefaultVoice)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.With(loginRateLimiter.Handler).Post("/auth/login", authHandler.Login)
		r.With(sessionMiddleware.Handler).Get("/auth/session", authHandler.Session)

		r.Post("/chat", chatHandler.Chat)
		r.Post("/chat-tts", chatHandler.ChatTTS)
		r.Post("/tts", chatHandler.TTS)

		r.Get("/brands", catalogHandler.Brands)
		r.Get("/voices", catalogHandler.Voices)
		r.Get("/models", catalogHandler.Models)

		r.Mount("/admin", adminHandler.Routes())
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
