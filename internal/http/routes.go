package http

import (
	"os"
	"strconv"
	"time"

	"battleship_backend/internal/config"
	"battleship_backend/internal/http/handlers"
	"battleship_backend/internal/http/middleware"
	"battleship_backend/internal/repository"
	"battleship_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, hub *ws.Hub, version string) {
	h := handlers.NewHandler(db, hub, cfg.DevMode)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 120
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute
	if v := os.Getenv("AUTH_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateWindow = time.Duration(n) * time.Second
		}
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Session actions get a per-player limiter on top of the IP limiter
	gameRL := middleware.GameRateLimit(cfg.GameRateLimit, time.Duration(cfg.GameRateWindow)*time.Second)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	{
		// Auth (tighter limit than the rest of the API)
		v1.POST("/auth", middleware.RedisRateLimit(authRateLimit, authRateWindow), h.Auth)

		// Player
		v1.GET("/me", middleware.JWT(), h.Me)
		v1.GET("/me/matches", middleware.JWT(), h.MyMatches)
		v1.GET("/me/audit", middleware.JWT(), h.MyAudit)

		// Sessions: snapshots are public, every mutation is authenticated
		v1.GET("/sessions/open", h.ListOpenSessions)
		v1.GET("/sessions/:id", h.GetSession)
		v1.POST("/sessions", middleware.JWT(), gameRL, h.CreateSession)
		v1.POST("/sessions/:id/join", middleware.JWT(), gameRL, h.JoinSession)
		v1.POST("/sessions/:id/fire", middleware.JWT(), gameRL, h.FireShot)
		v1.POST("/sessions/:id/resolve", middleware.JWT(), gameRL, h.ResolveShot)
		v1.POST("/sessions/:id/reveal", middleware.JWT(), gameRL, h.RevealBoard)
	}

	// WebSocket event feed. In-memory limiter here so live feeds keep
	// working through a redis outage.
	sessionRepo := repository.NewSessionRepository(db)
	r.GET("/ws", middleware.SimpleRateLimit(30, time.Minute), ws.HandleFeed(hub, sessionRepo, cfg.AllowedOrigins))
}
