package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/tripcanvas/tripcanvas/internal/api/assistant"
	"github.com/tripcanvas/tripcanvas/internal/api/conversation"
	"github.com/tripcanvas/tripcanvas/internal/api/imageproxy"
)

// Config contains the handlers the router mounts.
type Config struct {
	ConversationHandler conversation.Handler
	ImageProxyHandler   *imageproxy.HandlerImpl

	// AssistantHandler is optional. When set, the service exposes its own
	// /api/chat endpoint and can be pointed at itself instead of an external
	// chat backend.
	AssistantHandler *assistant.HandlerImpl
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/api/image-proxy", cfg.ImageProxyHandler.Proxy)

	if cfg.AssistantHandler != nil {
		r.Post("/api/chat", cfg.AssistantHandler.Chat)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", cfg.ConversationHandler.CreateSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", cfg.ConversationHandler.GetSession)
			r.Post("/messages", cfg.ConversationHandler.SendMessage)
			r.Post("/chips", cfg.ConversationHandler.SelectChip)
			r.Patch("/trip-details", cfg.ConversationHandler.SetTripDetails)
			r.Post("/apply-filters", cfg.ConversationHandler.ApplyFilters)
			r.Post("/personalize", cfg.ConversationHandler.Personalize)
			r.Post("/reset", cfg.ConversationHandler.ResetChat)
		})
	})

	return r
}
