package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbot-backend/cmd"
	"chatbot-backend/internal/api"
	"chatbot-backend/internal/chat"
	"chatbot-backend/internal/database"
	"chatbot-backend/internal/llm"
	"chatbot-backend/internal/store"
	"chatbot-backend/internal/telegram"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,notEmpty,required"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY,notEmpty,required"`
	DatabaseURL      string `env:"DATABASE_URL,notEmpty,required"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4"`
	APIPort          string `env:"API_PORT" envDefault:"8001"`
}

func main() {
	log.Println("Starting webhook server...")

	cmd.LoadEnvFile()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	conversations := store.NewStore(db)
	completer := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	dispatcher := telegram.NewDispatcher(cfg.TelegramBotToken)
	responder := chat.NewResponder(conversations, completer)

	// --- Chi Router Setup ---
	r := chi.NewRouter()

	// Middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400, // Cache preflight response for a day
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)                    // Log requests
	r.Use(middleware.Recoverer)                 // Recover from panics
	r.Use(middleware.Timeout(60 * time.Second)) // Set request timeout

	webhookHandler := api.NewWebhookService(conversations, responder, dispatcher)
	webhookHandler.AddRoutes(r)

	adminHandler := api.NewAdminService(conversations)
	adminHandler.AddRoutes(r)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Webhook server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
