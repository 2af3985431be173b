package repository

import (
	"context"
	"encoding/json"
	"time"

	"battleship_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchHistoryRepository struct {
	db *pgxpool.Pool
}

func NewMatchHistoryRepository(db *pgxpool.Pool) *MatchHistoryRepository {
	return &MatchHistoryRepository{db: db}
}

func (r *MatchHistoryRepository) Create(ctx context.Context, m *domain.MatchRecord) error {
	detailsJSON, err := json.Marshal(m.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO match_history
			(player_id, opponent_id, session_id, result, damage_dealt, damage_taken, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		m.PlayerID, m.OpponentID, m.SessionID, m.Result,
		m.DamageDealt, m.DamageTaken, detailsJSON,
	).Scan(&m.ID, &m.CreatedAt)
}

// CreateWithTx records a match within an existing transaction, so the
// history lands atomically with the final session update.
func (r *MatchHistoryRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, m *domain.MatchRecord) error {
	detailsJSON, err := json.Marshal(m.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	return tx.QueryRow(ctx,
		`INSERT INTO match_history
			(player_id, opponent_id, session_id, result, damage_dealt, damage_taken, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		m.PlayerID, m.OpponentID, m.SessionID, m.Result,
		m.DamageDealt, m.DamageTaken, detailsJSON,
	).Scan(&m.ID, &m.CreatedAt)
}

// GetByPlayer returns a player's match records, newest first.
func (r *MatchHistoryRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*domain.MatchRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, player_id, opponent_id, session_id, result,
				damage_dealt, damage_taken, details, created_at
		 FROM match_history
		 WHERE player_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.MatchRecord
	for rows.Next() {
		var (
			m           domain.MatchRecord
			detailsJSON []byte
		)
		if err := rows.Scan(
			&m.ID, &m.PlayerID, &m.OpponentID, &m.SessionID, &m.Result,
			&m.DamageDealt, &m.DamageTaken, &detailsJSON, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(detailsJSON) > 0 {
			_ = json.Unmarshal(detailsJSON, &m.Details)
		}
		result = append(result, &m)
	}

	return result, rows.Err()
}

// PlayerStats - aggregate results over a period
type PlayerStats struct {
	PlayerID     int64 `json:"player_id"`
	TotalMatches int   `json:"total_matches"`
	Wins         int   `json:"wins"`
	Losses       int   `json:"losses"`
	DamageDealt  int64 `json:"damage_dealt"`
	DamageTaken  int64 `json:"damage_taken"`
}

// GetPlayerStats returns a player's aggregate results since the given time.
func (r *MatchHistoryRepository) GetPlayerStats(ctx context.Context, playerID int64, since time.Time) (*PlayerStats, error) {
	stats := &PlayerStats{PlayerID: playerID}

	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*) as total_matches,
			COUNT(*) FILTER (WHERE result = 'win') as wins,
			COUNT(*) FILTER (WHERE result = 'lose') as losses,
			COALESCE(SUM(damage_dealt), 0) as damage_dealt,
			COALESCE(SUM(damage_taken), 0) as damage_taken
		 FROM match_history
		 WHERE player_id = $1 AND created_at >= $2`,
		playerID, since,
	).Scan(&stats.TotalMatches, &stats.Wins, &stats.Losses, &stats.DamageDealt, &stats.DamageTaken)

	if err != nil {
		return nil, err
	}

	return stats, nil
}
