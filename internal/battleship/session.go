package battleship

import (
	"errors"
	"time"
)

var (
	ErrSessionFull               = errors.New("session already has two players")
	ErrSelfPlay                  = errors.New("cannot join your own session")
	ErrNotReady                  = errors.New("game has not started yet")
	ErrGameOver                  = errors.New("game is already over")
	ErrGameNotOver               = errors.New("game is not over yet")
	ErrInvalidCoordinate         = errors.New("coordinate out of range")
	ErrShotAlreadyPending        = errors.New("a shot is already awaiting resolution")
	ErrNoPendingShot             = errors.New("no shot is awaiting resolution")
	ErrNotAPlayer                = errors.New("caller is not a player in this session")
	ErrNotYourTurn               = errors.New("not your turn")
	ErrAlreadyShotHere           = errors.New("cell was already shot")
	ErrNotDefender               = errors.New("only the defender can resolve the shot")
	ErrAlreadyRevealed           = errors.New("board already revealed")
	ErrCommitmentMismatch        = errors.New("revealed board does not match commitment")
	ErrInvalidFleetConfiguration = errors.New("fleet must occupy exactly 17 cells")
	ErrCheatingDetected          = errors.New("revealed board contradicts reported shot results")
)

// PendingShot is a fired shot waiting for the defender's report.
type PendingShot struct {
	X       int
	Y       int
	FirerID int64
}

// Session is the full state of one game between two players. All rule
// checks live on its methods; persistence and transport stay outside.
// Methods either complete their mutation or return an error leaving the
// session untouched.
type Session struct {
	ID          string
	PlayerAID   int64
	PlayerBID   int64 // 0 until someone joins
	CommitmentA Commitment
	CommitmentB Commitment
	Phase       Phase
	Turn        Role
	HitsOnA     HitGrid // shots against A's board, maintained by A's reports
	HitsOnB     HitGrid
	DamageA     int
	DamageB     int
	Pending     *PendingShot
	WinnerID    int64 // 0 until finished
	RevealedA   bool
	RevealedB   bool
	BoardA      *Board // set once A reveals
	BoardB      *Board
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSession opens a session with the creator seated as player A.
// Player A always moves first once an opponent joins.
func NewSession(id string, creatorID int64, commitment Commitment) *Session {
	return &Session{
		ID:          id,
		PlayerAID:   creatorID,
		CommitmentA: commitment,
		Phase:       PhaseAwaitingOpponent,
		Turn:        RoleA,
	}
}

// RoleOf reports which seat the given player holds, if any.
func (s *Session) RoleOf(playerID int64) Role {
	switch {
	case playerID == s.PlayerAID:
		return RoleA
	case s.PlayerBID != 0 && playerID == s.PlayerBID:
		return RoleB
	}
	return RoleNone
}

// Join seats the second player and activates the game.
func (s *Session) Join(playerID int64, commitment Commitment) error {
	if s.Phase != PhaseAwaitingOpponent {
		return ErrSessionFull
	}
	if playerID == s.PlayerAID {
		return ErrSelfPlay
	}

	s.PlayerBID = playerID
	s.CommitmentB = commitment
	s.Phase = PhaseActive
	return nil
}

// Fire records an attack on the opponent's cell (x, y). The shot stays
// pending until the defender resolves it; no second shot may be fired
// in between.
func (s *Session) Fire(playerID int64, x, y int) error {
	if s.Phase == PhaseAwaitingOpponent {
		return ErrNotReady
	}
	if s.Phase == PhaseFinished {
		return ErrGameOver
	}
	if x < 0 || x >= GridSize || y < 0 || y >= GridSize {
		return ErrInvalidCoordinate
	}
	if s.Pending != nil {
		return ErrShotAlreadyPending
	}

	role := s.RoleOf(playerID)
	if role == RoleNone {
		return ErrNotAPlayer
	}
	if role != s.Turn {
		return ErrNotYourTurn
	}

	// The firer targets the opponent's board.
	grid := &s.HitsOnB
	if role == RoleB {
		grid = &s.HitsOnA
	}
	if grid[cellIndex(x, y)] != CellUntouched {
		return ErrAlreadyShotHere
	}

	s.Pending = &PendingShot{X: x, Y: y, FirerID: playerID}
	return nil
}

// Resolve is the defender's report on the pending shot against their own
// board. A reported hit raises the defender's damage; the seventeenth
// hit ends the game with the firer as winner. Otherwise the turn passes
// to the defender.
func (s *Session) Resolve(playerID int64, wasHit bool) error {
	if s.Phase == PhaseAwaitingOpponent {
		return ErrNotReady
	}
	if s.Phase == PhaseFinished {
		return ErrGameOver
	}
	if s.Pending == nil {
		return ErrNoPendingShot
	}

	role := s.RoleOf(playerID)
	if role == RoleNone {
		return ErrNotAPlayer
	}
	if playerID == s.Pending.FirerID {
		return ErrNotDefender
	}

	// The resolver reports against their own board.
	grid := &s.HitsOnA
	damage := &s.DamageA
	if role == RoleB {
		grid = &s.HitsOnB
		damage = &s.DamageB
	}

	cell := cellIndex(s.Pending.X, s.Pending.Y)
	if wasHit {
		grid[cell] = CellHit
		*damage++
		if *damage >= FleetCells {
			s.Phase = PhaseFinished
			s.WinnerID = s.Pending.FirerID
		}
	} else {
		grid[cell] = CellMiss
	}

	s.Pending = nil
	if s.Phase != PhaseFinished {
		s.Turn = role
	}
	return nil
}

// Reveal opens a player's board after the game has finished. The board
// must hash to the published commitment, carry exactly FleetCells ship
// cells, and agree with every shot result the player reported during
// the game; any contradiction is cheating and the reveal is rejected.
func (s *Session) Reveal(playerID int64, board Board, salt Salt) error {
	if s.Phase != PhaseFinished {
		return ErrGameNotOver
	}

	role := s.RoleOf(playerID)
	if role == RoleNone {
		return ErrNotAPlayer
	}

	revealed := &s.RevealedA
	commitment := s.CommitmentA
	grid := s.HitsOnA
	stored := &s.BoardA
	if role == RoleB {
		revealed = &s.RevealedB
		commitment = s.CommitmentB
		grid = s.HitsOnB
		stored = &s.BoardB
	}

	if *revealed {
		return ErrAlreadyRevealed
	}
	if ComputeCommitment(board, salt) != commitment {
		return ErrCommitmentMismatch
	}
	if board.ShipCount() != FleetCells {
		return ErrInvalidFleetConfiguration
	}
	if err := verifyShotConsistency(board, grid); err != nil {
		return err
	}

	*revealed = true
	b := board
	*stored = &b
	return nil
}
