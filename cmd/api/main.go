package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hikkoshi-box/hikkoshigo/internal/ai"
	"github.com/hikkoshi-box/hikkoshigo/internal/config"
	"github.com/hikkoshi-box/hikkoshigo/internal/database"
	"github.com/hikkoshi-box/hikkoshigo/internal/handlers"
	"github.com/hikkoshi-box/hikkoshigo/internal/models"
	"github.com/hikkoshi-box/hikkoshigo/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-migrate schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.Product{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Initialize the AI suggester; without a credential the pipeline
	// still works on rule-based fallbacks
	var gemini ai.TextModel
	if cfg.Gemini.APIKey != "" {
		client, err := ai.NewGeminiClient(context.Background(), cfg.Gemini.APIKey)
		if err != nil {
			log.Printf("⚠️ Gemini unavailable, AI suggestions degrade to rules: %v", err)
		} else {
			gemini = client
			defer client.Close()
			log.Println("✅ Gemini client initialized")
		}
	} else {
		log.Println("ℹ️ No GEMINI_API_KEY configured, using rule-based suggestions")
	}
	suggester := ai.NewSuggester(gemini, cfg.Gemini.Model)

	// 5. WebSocket hub for resolution-state push
	hub := websocket.NewHub()
	go hub.Run()

	// 6. Set up HTTP router
	router := handlers.NewRouter(db, cfg, suggester, hub)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
