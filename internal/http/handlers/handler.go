package handlers

import (
	"battleship_backend/internal/repository"
	"battleship_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB           *pgxpool.Pool
	DevMode      bool
	PlayerRepo   *repository.PlayerRepository
	MatchRepo    *repository.MatchHistoryRepository
	Arena        *service.ArenaService
	AuditService *service.AuditService
}

// NewHandler wires the repositories and services behind the HTTP surface.
// events receives session events as games progress; pass the websocket hub.
func NewHandler(db *pgxpool.Pool, events service.EventPublisher, devMode bool) *Handler {
	audit := service.NewAuditService(db)
	return &Handler{
		DB:           db,
		DevMode:      devMode,
		PlayerRepo:   repository.NewPlayerRepository(db),
		MatchRepo:    repository.NewMatchHistoryRepository(db),
		Arena:        service.NewArenaService(db, audit, events),
		AuditService: audit,
	}
}

// getPlayerID pulls the authenticated player id out of the gin context.
func getPlayerID(c *gin.Context) (int64, bool) {
	val, ok := c.Get("player_id")
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
