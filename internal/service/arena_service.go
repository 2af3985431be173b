package service

import (
	"context"
	"errors"

	"battleship_backend/internal/battleship"
	"battleship_backend/internal/domain"
	"battleship_backend/internal/logger"
	"battleship_backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventPublisher fans a session event out to its subscribed participants.
// The websocket hub implements it; a nil publisher is replaced by a no-op.
type EventPublisher interface {
	Publish(sessionID, eventType string, payload map[string]interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, string, map[string]interface{}) {}

// ArenaService drives game sessions. Every mutating call loads the
// session under a row lock, applies the rule checks in memory, and
// writes the result back in the same transaction, so concurrent
// requests against one session serialize cleanly.
type ArenaService struct {
	db       *pgxpool.Pool
	sessions *repository.SessionRepository
	matches  *repository.MatchHistoryRepository
	audit    *AuditService
	events   EventPublisher
}

func NewArenaService(db *pgxpool.Pool, audit *AuditService, events EventPublisher) *ArenaService {
	if events == nil {
		events = noopPublisher{}
	}
	return &ArenaService{
		db:       db,
		sessions: repository.NewSessionRepository(db),
		matches:  repository.NewMatchHistoryRepository(db),
		audit:    audit,
		events:   events,
	}
}

// CreateSession opens a session for the creator's commitment.
func (s *ArenaService) CreateSession(ctx context.Context, creatorID int64, commitment battleship.Commitment) (*battleship.Session, error) {
	session := battleship.NewSession(uuid.New().String(), creatorID, commitment)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	sessionsCreated.Inc()
	s.audit.LogSessionCreated(ctx, creatorID, session.ID)
	logger.Info("session created", "session_id", session.ID, "player_id", creatorID)
	return session, nil
}

// JoinSession seats the caller as player B and activates the game.
func (s *ArenaService) JoinSession(ctx context.Context, sessionID string, playerID int64, commitment battleship.Commitment) (*battleship.Session, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := s.sessions.GetForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Join(playerID, commitment); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, tx, session); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.audit.LogSessionJoined(ctx, playerID, sessionID)
	s.events.Publish(sessionID, "player_joined", map[string]interface{}{
		"player_id": playerID,
	})
	logger.Info("session joined", "session_id", sessionID, "player_id", playerID)
	return session, nil
}

// FireShot records the caller's attack on (x, y).
func (s *ArenaService) FireShot(ctx context.Context, sessionID string, playerID int64, x, y int) (*battleship.Session, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := s.sessions.GetForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Fire(playerID, x, y); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, tx, session); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	shotsFired.Inc()
	s.audit.LogShotFired(ctx, playerID, sessionID, x, y)
	s.events.Publish(sessionID, "shot_fired", map[string]interface{}{
		"player_id": playerID,
		"x":         x,
		"y":         y,
	})
	return session, nil
}

// ResolveShot records the defender's report on the pending shot. When
// the report ends the game, both match history rows land in the same
// transaction as the final session state.
func (s *ArenaService) ResolveShot(ctx context.Context, sessionID string, playerID int64, wasHit bool) (*battleship.Session, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := s.sessions.GetForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	var shot battleship.PendingShot
	if session.Pending != nil {
		shot = *session.Pending
	}

	if err := session.Resolve(playerID, wasHit); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, tx, session); err != nil {
		return nil, err
	}

	finished := session.Phase == battleship.PhaseFinished
	if finished {
		if err := s.recordMatch(ctx, tx, session); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	result := "miss"
	if wasHit {
		result = "hit"
	}
	shotsResolved.WithLabelValues(result).Inc()
	s.audit.LogShotResolved(ctx, playerID, sessionID, shot.X, shot.Y, wasHit)
	s.events.Publish(sessionID, "shot_resolved", map[string]interface{}{
		"player_id": playerID,
		"x":         shot.X,
		"y":         shot.Y,
		"hit":       wasHit,
		"next_turn": session.Turn.String(),
	})

	if finished {
		sessionsFinished.Inc()
		s.audit.LogGameFinished(ctx, session.WinnerID, sessionID)
		s.events.Publish(sessionID, "game_finished", map[string]interface{}{
			"winner_id": session.WinnerID,
		})
		logger.Info("game finished", "session_id", sessionID, "winner_id", session.WinnerID)
	}
	return session, nil
}

// RevealBoard opens the caller's board after the game. Every attempt is
// audited with its verdict; a board contradicting the caller's own shot
// reports is rejected and flagged as cheating.
func (s *ArenaService) RevealBoard(ctx context.Context, sessionID string, playerID int64, board battleship.Board, salt battleship.Salt) (*battleship.Session, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := s.sessions.GetForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := session.Reveal(playerID, board, salt); err != nil {
		switch {
		case errors.Is(err, battleship.ErrCheatingDetected):
			revealsTotal.WithLabelValues("cheating_detected").Inc()
			s.audit.LogReveal(ctx, playerID, sessionID, "cheating_detected")
			s.events.Publish(sessionID, "cheating_detected", map[string]interface{}{
				"player_id": playerID,
			})
			logger.Warn("cheating detected at reveal", "session_id", sessionID, "player_id", playerID)
		case errors.Is(err, battleship.ErrCommitmentMismatch):
			revealsTotal.WithLabelValues("commitment_mismatch").Inc()
			s.audit.LogReveal(ctx, playerID, sessionID, "commitment_mismatch")
		case errors.Is(err, battleship.ErrInvalidFleetConfiguration):
			revealsTotal.WithLabelValues("invalid_fleet").Inc()
			s.audit.LogReveal(ctx, playerID, sessionID, "invalid_fleet")
		}
		return nil, err
	}

	if err := s.sessions.Update(ctx, tx, session); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	revealsTotal.WithLabelValues("ok").Inc()
	s.audit.LogReveal(ctx, playerID, sessionID, "ok")
	s.events.Publish(sessionID, "board_revealed", map[string]interface{}{
		"player_id": playerID,
	})
	return session, nil
}

// GetSession returns the current session snapshot.
func (s *ArenaService) GetSession(ctx context.Context, sessionID string) (*battleship.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// ListOpenSessions returns joinable sessions for the lobby.
func (s *ArenaService) ListOpenSessions(ctx context.Context, limit int) ([]*battleship.Session, error) {
	return s.sessions.ListOpen(ctx, limit)
}

// recordMatch writes one history row per participant.
func (s *ArenaService) recordMatch(ctx context.Context, tx pgx.Tx, session *battleship.Session) error {
	// Default: player B won, player A lost.
	loserID := session.PlayerAID
	winnerDamage := session.DamageB // hits the winner's own fleet took
	loserDamage := session.DamageA
	if session.WinnerID == session.PlayerAID {
		loserID = session.PlayerBID
		winnerDamage = session.DamageA
		loserDamage = session.DamageB
	}

	winRecord := &domain.MatchRecord{
		PlayerID:    session.WinnerID,
		OpponentID:  loserID,
		SessionID:   session.ID,
		Result:      domain.MatchResultWin,
		DamageDealt: loserDamage,
		DamageTaken: winnerDamage,
	}
	if err := s.matches.CreateWithTx(ctx, tx, winRecord); err != nil {
		return err
	}

	loseRecord := &domain.MatchRecord{
		PlayerID:    loserID,
		OpponentID:  session.WinnerID,
		SessionID:   session.ID,
		Result:      domain.MatchResultLose,
		DamageDealt: winnerDamage,
		DamageTaken: loserDamage,
	}
	return s.matches.CreateWithTx(ctx, tx, loseRecord)
}
