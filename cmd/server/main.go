// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/vmelnikov/relaybot/internal/bot"
	"github.com/vmelnikov/relaybot/internal/config"
	"github.com/vmelnikov/relaybot/internal/domain"
	"github.com/vmelnikov/relaybot/internal/handlers"
	"github.com/vmelnikov/relaybot/internal/middleware"
	conversationrepo "github.com/vmelnikov/relaybot/internal/repository/conversation"
	turnrepo "github.com/vmelnikov/relaybot/internal/repository/turn"
	"github.com/vmelnikov/relaybot/internal/services"
	"github.com/vmelnikov/relaybot/internal/services/ai"
	"github.com/vmelnikov/relaybot/internal/services/telegram"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.Conversation{}, &domain.Turn{}, &domain.ActivePointer{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	logger := services.NewLogger("relaybot")

	// --- Repositories ---
	conversationRepo := conversationrepo.NewConversationRepository(db)
	turnRepo := turnrepo.NewTurnRepository(db)

	// --- Services ---
	conversationService, err := services.NewConversationService(conversationRepo, turnRepo, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Conversation Service: %v", err)
	}

	aiConfig := ai.DefaultConfig()
	aiConfig.Provider = cfg.CompletionProvider
	aiConfig.Timeout = time.Duration(cfg.CompletionTimeout) * time.Second
	aiConfig.GeminiAPIKey = cfg.GeminiAPIKey
	aiConfig.GeminiBaseURL = cfg.GeminiBaseURL
	aiConfig.GeminiModel = cfg.GeminiModel
	aiConfig.OpenAIAPIKey = cfg.OpenAIAPIKey
	aiConfig.OpenAIBaseURL = cfg.OpenAIBaseURL
	aiConfig.OpenAIModel = cfg.OpenAIModel
	aiService, err := services.NewAIService(aiConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize AI Service: %v", err)
	}

	telegramConfig := telegram.DefaultConfig()
	telegramConfig.Token = cfg.TelegramToken
	telegramConfig.BaseURL = cfg.TelegramBaseURL
	sender, err := telegram.NewHTTPSender(telegramConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Telegram sender: %v", err)
	}

	dispatcher, err := bot.NewDispatcher(conversationService, aiService, sender, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize dispatcher: %v", err)
	}

	// --- Handlers ---
	webhookHandler := handlers.NewWebhookHandler(dispatcher, logger)
	webChatHandler := handlers.NewWebChatHandler(aiService, logger)
	pageHandler := handlers.NewPageHandler()

	// --- Router Setup ---
	r := mux.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); _, _ = w.Write([]byte("OK")) }).Methods("GET")
	r.HandleFunc("/", pageHandler.ShowIndexPage).Methods("GET")
	r.HandleFunc("/webhook", webhookHandler.HandleUpdate).Methods("POST")
	r.HandleFunc("/api/chat", webChatHandler.HandleChat).Methods("POST")

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("==================================================")
	log.Printf("Relay bot - Telegram chat with memory")
	log.Printf("==================================================")
	log.Printf("Server starting on port %s", port)
	log.Printf("Webhook endpoint: http://localhost%s/webhook", port)
	log.Printf("Web chat: http://localhost%s/", port)
	log.Printf("==================================================")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}
