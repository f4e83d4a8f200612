package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moodloop/insight-server/internal/api"
	"github.com/moodloop/insight-server/internal/cache"
	"github.com/moodloop/insight-server/internal/config"
	"github.com/moodloop/insight-server/internal/db"
	"github.com/moodloop/insight-server/internal/insights"
	"github.com/moodloop/insight-server/internal/provider"
	"github.com/moodloop/insight-server/internal/ratelimit"
	"github.com/moodloop/insight-server/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting insight-server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Wire the enrichment pipeline
	cacheStore := cache.New(database, time.Duration(cfg.CacheTTLHours)*time.Hour)
	limiter := ratelimit.New(cfg.DailyAILimit, 24*time.Hour)
	prov := provider.New(cfg)
	if prov == nil {
		log.Println("No AI provider configured; serving heuristic insights only")
	} else if cfg.ProviderKey == "" {
		log.Printf("Provider %s configured without a credential; requests will fall back to heuristics", cfg.Provider)
	} else {
		log.Printf("Provider configured: %s", prov.Name())
	}
	service := insights.NewService(database, cacheStore, limiter, prov)

	// Create router
	router := api.NewRouter(cfg, database, service, cacheStore)

	// Create and start scheduler
	sched, err := scheduler.New(cacheStore)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Start server
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down gracefully...")

	// Give ongoing requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Stopping scheduler...")
	if err := sched.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	log.Println("Closing database...")
	if err := database.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
}
