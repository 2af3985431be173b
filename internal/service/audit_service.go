package service

import (
	"context"

	"battleship_backend/internal/domain"
	"battleship_backend/internal/logger"
	"battleship_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditService handles audit logging
type AuditService struct {
	repo *repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(db *pgxpool.Pool) *AuditService {
	return &AuditService{
		repo: repository.NewAuditRepository(db),
	}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, playerID int64, action, category string, details map[string]interface{}) {
	log := &domain.AuditLog{
		PlayerID: playerID,
		Action:   action,
		Category: category,
		Details:  details,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "player_id", playerID)
	}
}

// LogWithRequest creates an audit log with request info (IP, User-Agent)
func (s *AuditService) LogWithRequest(ctx context.Context, playerID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	log := &domain.AuditLog{
		PlayerID:  playerID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "player_id", playerID)
	}
}

// LogLogin logs a player login
func (s *AuditService) LogLogin(ctx context.Context, playerID int64, ip, userAgent string) {
	s.LogWithRequest(ctx, playerID, domain.AuditActionLogin, domain.AuditCategoryAuth, ip, userAgent, nil)
}

// LogSessionCreated logs a new session
func (s *AuditService) LogSessionCreated(ctx context.Context, playerID int64, sessionID string) {
	s.Log(ctx, playerID, domain.AuditActionSessionCreate, domain.AuditCategorySession, map[string]interface{}{
		"session_id": sessionID,
	})
}

// LogSessionJoined logs the second player entering a session
func (s *AuditService) LogSessionJoined(ctx context.Context, playerID int64, sessionID string) {
	s.Log(ctx, playerID, domain.AuditActionSessionJoin, domain.AuditCategorySession, map[string]interface{}{
		"session_id": sessionID,
	})
}

// LogShotFired puts an attack on the record
func (s *AuditService) LogShotFired(ctx context.Context, playerID int64, sessionID string, x, y int) {
	s.Log(ctx, playerID, domain.AuditActionShotFired, domain.AuditCategoryShot, map[string]interface{}{
		"session_id": sessionID,
		"x":          x,
		"y":          y,
	})
}

// LogShotResolved logs a resolved shot with its reported outcome
func (s *AuditService) LogShotResolved(ctx context.Context, playerID int64, sessionID string, x, y int, hit bool) {
	s.Log(ctx, playerID, domain.AuditActionShotResolved, domain.AuditCategoryShot, map[string]interface{}{
		"session_id": sessionID,
		"x":          x,
		"y":          y,
		"hit":        hit,
	})
}

// LogGameFinished logs the end of a game
func (s *AuditService) LogGameFinished(ctx context.Context, winnerID int64, sessionID string) {
	s.Log(ctx, winnerID, domain.AuditActionGameFinished, domain.AuditCategorySession, map[string]interface{}{
		"session_id": sessionID,
	})
}

// LogReveal logs a reveal attempt with its verdict; every attempt lands
// in the audit trail, rejected ones included.
func (s *AuditService) LogReveal(ctx context.Context, playerID int64, sessionID, verdict string) {
	action := domain.AuditActionBoardRevealed
	switch verdict {
	case "cheating_detected":
		action = domain.AuditActionCheatingDetected
	case "ok":
	default:
		action = domain.AuditActionRevealRejected
	}

	s.Log(ctx, playerID, action, domain.AuditCategoryReveal, map[string]interface{}{
		"session_id": sessionID,
		"verdict":    verdict,
	})
}

// GetPlayerAuditLogs returns audit logs for a player
func (s *AuditService) GetPlayerAuditLogs(ctx context.Context, playerID int64, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByPlayerID(ctx, playerID, limit)
}
