package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/config"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/handlers"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/identity"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/security"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/services"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/storage"
)

func main() {
	cfg := config.LoadConfig()

	metrics := services.NewMetrics()
	hub := services.NewHub(metrics)
	registry := services.NewRegistry(metrics)
	limiter := security.NewRateLimiter(config.MaxMessagesPerSecond, config.RateLimitWindow)
	origins := security.NewOriginValidator(cfg.AllowedOrigins)

	coordinator := services.NewCoordinator(
		cfg,
		registry,
		hub,
		metrics,
		limiter,
		identity.NewGuestProvider(),
		storage.NewLogRecorder(),
	)

	ctx := context.Background()
	go hub.Run(ctx)
	go registry.RunSweeper(ctx, cfg.SweepInterval, cfg.RoomTTL, coordinator.EvictRoom)

	wsHandler := handlers.NewWSHandler(coordinator, metrics, origins)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws/{roomCode}", wsHandler.HandleWebSocket)
	r.Get("/ws", wsHandler.HandleWebSocket)
	r.Get("/healthz", handlers.HealthHandler(metrics))
	r.Method(http.MethodGet, "/debug/metrics", handlers.NewMetricsHandler(metrics))

	log.Printf("✓ dots-and-boxes coordinator listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
