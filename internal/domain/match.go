package domain

import "time"

// MatchResult is the outcome of a finished game from one player's side.
type MatchResult string

const (
	MatchResultWin  MatchResult = "win"
	MatchResultLose MatchResult = "lose"
)

// MatchRecord is one player's row in the match history. Every finished
// session produces two records, one per participant.
type MatchRecord struct {
	ID          int64                  `db:"id" json:"id"`
	PlayerID    int64                  `db:"player_id" json:"player_id"`
	OpponentID  int64                  `db:"opponent_id" json:"opponent_id"`
	SessionID   string                 `db:"session_id" json:"session_id"`
	Result      MatchResult            `db:"result" json:"result"`
	DamageDealt int                    `db:"damage_dealt" json:"damage_dealt"`
	DamageTaken int                    `db:"damage_taken" json:"damage_taken"`
	Details     map[string]interface{} `db:"details" json:"details,omitempty"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
}
