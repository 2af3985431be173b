package repository

import (
	"context"

	"battleship_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByPublicKey(ctx context.Context, publicKey string) (*domain.Player, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, public_key, COALESCE(username, ''), created_at
		 FROM players
		 WHERE public_key = $1`,
		publicKey,
	)

	var p domain.Player
	if err := row.Scan(&p.ID, &p.PublicKey, &p.Username, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, public_key, COALESCE(username, ''), created_at
		 FROM players
		 WHERE id = $1`,
		id,
	)

	var p domain.Player
	if err := row.Scan(&p.ID, &p.PublicKey, &p.Username, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO players (public_key, username)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		p.PublicKey,
		p.Username,
	).Scan(&p.ID, &p.CreatedAt)
}

// UpdateUsername stores a player's chosen display name.
func (r *PlayerRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE players SET username = $1 WHERE id = $2`,
		username, id,
	)
	return err
}
