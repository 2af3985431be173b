package domain

import "time"

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	PlayerID  int64                  `db:"player_id" json:"player_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth    = "auth"
	AuditCategorySession = "session"
	AuditCategoryShot    = "shot"
	AuditCategoryReveal  = "reveal"
)

// Audit actions
const (
	// Auth actions
	AuditActionLogin = "login"

	// Session lifecycle
	AuditActionSessionCreate = "session_create"
	AuditActionSessionJoin   = "session_join"
	AuditActionGameFinished  = "game_finished"

	// Shot handshake
	AuditActionShotFired    = "shot_fired"
	AuditActionShotResolved = "shot_resolved"

	// Reveal verdicts
	AuditActionBoardRevealed    = "board_revealed"
	AuditActionRevealRejected   = "reveal_rejected"
	AuditActionCheatingDetected = "cheating_detected"
)
