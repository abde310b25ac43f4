package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/tripcanvas/tripcanvas/app/db"
	appLogger "github.com/tripcanvas/tripcanvas/app/logger"
	"github.com/tripcanvas/tripcanvas/app/observability/metrics"
	"github.com/tripcanvas/tripcanvas/app/tracer"
	"github.com/tripcanvas/tripcanvas/config"
	"github.com/tripcanvas/tripcanvas/internal/api/assistant"
	"github.com/tripcanvas/tripcanvas/internal/api/conversation"
	"github.com/tripcanvas/tripcanvas/internal/api/imageproxy"
	"github.com/tripcanvas/tripcanvas/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics()
	metrics.InitAppMetrics()
	appMetrics := metrics.Get()

	// --- Session Store ---
	var sessionRepo conversation.Repository
	if cfg.Sessions.Store == "postgres" {
		dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
		if err != nil {
			logger.Error("Failed to generate database config", slog.Any("error", err))
			os.Exit(1)
		}

		if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
			logger.Error("Failed to run database migrations", slog.Any("error", err))
			os.Exit(1)
		}

		pool, err := database.Init(dbConfig.ConnectionURL, logger)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()

		if !database.WaitForDB(ctx, pool, logger) {
			logger.Error("Database not ready after waiting, exiting.")
			os.Exit(1)
		}
		sessionRepo = conversation.NewPostgresRepository(pool, logger)
	} else {
		logger.Info("Using in-memory session store", slog.Duration("ttl", cfg.Sessions.TTL))
		sessionRepo = conversation.NewCacheRepository(cfg.Sessions.TTL)
	}

	// --- Chat Backend ---
	// With no external backend configured the service answers /api/chat
	// itself through the assistant responder.
	var chatClient conversation.ChatClient
	var assistantHandler *assistant.HandlerImpl
	if cfg.Chat.BackendBase != "" {
		logger.Info("Using external chat backend", slog.String("base", cfg.Chat.BackendBase))
		chatClient = conversation.NewHTTPChatClient(cfg.Chat.BackendBase, cfg.Chat.Timeout)
	} else {
		responder := buildResponder(ctx, logger)
		chatClient = assistant.NewLocalChatClient(responder)
		assistantHandler = assistant.NewHandlerImpl(responder, logger)
	}

	// --- Dependency Injection ---
	conversationService := conversation.NewService(sessionRepo, chatClient, appMetrics, logger)
	conversationHandler := conversation.NewHandlerImpl(conversationService, logger)
	imageProxyHandler := imageproxy.NewHandlerImpl(logger)

	mainRouter := router.SetupRouter(&router.Config{
		ConversationHandler: conversationHandler,
		ImageProxyHandler:   imageProxyHandler,
		AssistantHandler:    assistantHandler,
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(60 * time.Second))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", mainRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// buildResponder prefers the Gemini responder when an API key is present and
// falls back to the deterministic rule responder otherwise.
func buildResponder(ctx context.Context, logger *slog.Logger) assistant.Responder {
	aiClient, err := assistant.NewAIClient(ctx)
	if err != nil {
		logger.Warn("Gemini client init failed, using rule responder", slog.Any("error", err))
		return assistant.NewRuleResponder(logger)
	}
	if aiClient == nil {
		logger.Info("No Gemini API key configured, using rule responder")
		return assistant.NewRuleResponder(logger)
	}
	logger.Info("Using Gemini-backed chat responder")
	return assistant.NewGeminiResponder(aiClient, logger)
}

// setupLogger configures and returns the application logger.
func setupLogger(mode string) *slog.Logger {
	var logger *slog.Logger

	if mode == "development" || mode == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
