package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/reveriehq/reverie-backend/internal/config"
	"github.com/reveriehq/reverie-backend/internal/database"
	"github.com/reveriehq/reverie-backend/internal/handlers"
	"github.com/reveriehq/reverie-backend/internal/middleware"
	"github.com/reveriehq/reverie-backend/internal/ratelimit"
	"github.com/reveriehq/reverie-backend/internal/routes"
	"github.com/reveriehq/reverie-backend/internal/services"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Image provider (best-effort: entries publish without images if missing)
	if cfg.PixabayAPIKey == "" {
		log.Println("Warning: PIXABAY_API_KEY not set. Mood images will not be resolved")
	}
	images := services.NewPixabayService(cfg.PixabayAPIKey)

	// Per-user write budget, shared across all server instances via Redis
	limiter := ratelimit.New(
		database.RedisClient,
		cfg.RateLimitCapacity,
		cfg.RateLimitRefillTokens,
		time.Duration(cfg.RateLimitRefillInterval)*time.Second,
	)
	log.Printf("✅ Write budget: %d tokens, +%d every %ds",
		cfg.RateLimitCapacity, cfg.RateLimitRefillTokens, cfg.RateLimitRefillInterval)

	// Wire services into handlers
	journalService := services.NewJournalService(limiter, images)
	collectionService := services.NewCollectionService(limiter, journalService)
	handlers.Init(journalService, collectionService)

	// Setup router
	r := chi.NewRouter()

	// CORS first so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Global per-IP rate limit (Redis-backed, fail-open)
	r.Use(middleware.RateLimitMiddleware)

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r)

	// Log registered routes for debugging
	log.Println("📋 Registered routes:")
	log.Println("  GET    /health")
	log.Println("  POST   /api/journals")
	log.Println("  GET    /api/journals")
	log.Println("  GET    /api/journals/draft")
	log.Println("  POST   /api/journals/draft")
	log.Println("  GET    /api/journals/{id}")
	log.Println("  PUT    /api/journals/{id}")
	log.Println("  DELETE /api/journals/{id}")
	log.Println("  POST   /api/collections")
	log.Println("  GET    /api/collections")
	log.Println("  GET    /api/collections/{id}")
	log.Println("  DELETE /api/collections/{id}")
	log.Println("  GET    /api/moods")
	log.Println("  GET    /api/insights")

	log.Printf("🚀 Reverie backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
