package repository

import (
	"context"
	"errors"
	"fmt"

	"battleship_backend/internal/battleship"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

const sessionColumns = `id, player_a_id, player_b_id, commitment_a, commitment_b,
	phase, turn, hits_on_a, hits_on_b, damage_a, damage_b,
	pending_x, pending_y, pending_firer_id, winner_id,
	revealed_a, revealed_b, board_a, board_b, created_at, updated_at`

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *battleship.Session) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO game_sessions (id, player_a_id, commitment_a, phase, turn, hits_on_a, hits_on_b)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		s.ID,
		s.PlayerAID,
		s.CommitmentA[:],
		s.Phase,
		int16(s.Turn),
		s.HitsOnA.Bytes(),
		s.HitsOnB.Bytes(),
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSessionExists
	}
	return err
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*battleship.Session, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// GetForUpdate loads the session inside tx and takes a row lock, so the
// fire/resolve/reveal handshakes serialize per session.
func (r *SessionRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*battleship.Session, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1 FOR UPDATE`, id)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// Update writes the whole mutable state back within tx.
func (r *SessionRepository) Update(ctx context.Context, tx pgx.Tx, s *battleship.Session) error {
	var (
		playerB      *int64
		commitB      []byte
		pendingX     *int16
		pendingY     *int16
		pendingFirer *int64
		winner       *int64
		boardA       []byte
		boardB       []byte
	)
	if s.PlayerBID != 0 {
		playerB = &s.PlayerBID
		commitB = s.CommitmentB[:]
	}
	if s.Pending != nil {
		x, y := int16(s.Pending.X), int16(s.Pending.Y)
		pendingX, pendingY = &x, &y
		pendingFirer = &s.Pending.FirerID
	}
	if s.WinnerID != 0 {
		winner = &s.WinnerID
	}
	if s.BoardA != nil {
		boardA = s.BoardA.Bytes()
	}
	if s.BoardB != nil {
		boardB = s.BoardB.Bytes()
	}

	tag, err := tx.Exec(ctx,
		`UPDATE game_sessions SET
			player_b_id = $2, commitment_b = $3, phase = $4, turn = $5,
			hits_on_a = $6, hits_on_b = $7, damage_a = $8, damage_b = $9,
			pending_x = $10, pending_y = $11, pending_firer_id = $12,
			winner_id = $13, revealed_a = $14, revealed_b = $15,
			board_a = $16, board_b = $17, updated_at = now()
		 WHERE id = $1`,
		s.ID,
		playerB,
		commitB,
		s.Phase,
		int16(s.Turn),
		s.HitsOnA.Bytes(),
		s.HitsOnB.Bytes(),
		s.DamageA,
		s.DamageB,
		pendingX,
		pendingY,
		pendingFirer,
		winner,
		s.RevealedA,
		s.RevealedB,
		boardA,
		boardB,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListOpen returns sessions still waiting for an opponent, newest first.
func (r *SessionRepository) ListOpen(ctx context.Context, limit int) ([]*battleship.Session, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM game_sessions
		 WHERE phase = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		battleship.PhaseAwaitingOpponent, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*battleship.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func scanSession(row pgx.Row) (*battleship.Session, error) {
	var (
		s            battleship.Session
		phase        string
		turn         int16
		playerB      *int64
		commitA      []byte
		commitB      []byte
		hitsA        []byte
		hitsB        []byte
		pendingX     *int16
		pendingY     *int16
		pendingFirer *int64
		winner       *int64
		boardA       []byte
		boardB       []byte
	)

	if err := row.Scan(
		&s.ID, &s.PlayerAID, &playerB, &commitA, &commitB,
		&phase, &turn, &hitsA, &hitsB, &s.DamageA, &s.DamageB,
		&pendingX, &pendingY, &pendingFirer, &winner,
		&s.RevealedA, &s.RevealedB, &boardA, &boardB, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.Phase = battleship.Phase(phase)
	s.Turn = battleship.Role(turn)

	if playerB != nil {
		s.PlayerBID = *playerB
	}
	if len(commitA) != len(s.CommitmentA) {
		return nil, fmt.Errorf("session %s: commitment_a has %d bytes", s.ID, len(commitA))
	}
	copy(s.CommitmentA[:], commitA)
	if commitB != nil {
		if len(commitB) != len(s.CommitmentB) {
			return nil, fmt.Errorf("session %s: commitment_b has %d bytes", s.ID, len(commitB))
		}
		copy(s.CommitmentB[:], commitB)
	}

	var err error
	if s.HitsOnA, err = battleship.HitGridFromBytes(hitsA); err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	if s.HitsOnB, err = battleship.HitGridFromBytes(hitsB); err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}

	if pendingFirer != nil {
		shot := &battleship.PendingShot{FirerID: *pendingFirer}
		if pendingX != nil {
			shot.X = int(*pendingX)
		}
		if pendingY != nil {
			shot.Y = int(*pendingY)
		}
		s.Pending = shot
	}
	if winner != nil {
		s.WinnerID = *winner
	}

	if len(boardA) > 0 {
		b, err := battleship.BoardFromBytes(boardA)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", s.ID, err)
		}
		s.BoardA = &b
	}
	if len(boardB) > 0 {
		b, err := battleship.BoardFromBytes(boardB)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", s.ID, err)
		}
		s.BoardB = &b
	}

	return &s, nil
}
