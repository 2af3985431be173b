package battleship

import (
	"crypto/sha256"
	"fmt"
)

const (
	// GridSize is the side length of the board.
	GridSize = 10
	// GridCells is the total number of cells on a board.
	GridCells = GridSize * GridSize
	// FleetCells is how many cells a legal fleet occupies (5+4+3+3+2).
	FleetCells = 17
)

// Board cell values as committed by a player.
const (
	CellWater byte = 0
	CellShip  byte = 1
)

// CellState tracks what happened to a cell of a player's board
// according to that player's own shot reports.
type CellState byte

const (
	CellUntouched CellState = 0
	CellMiss      CellState = 1
	CellHit       CellState = 2
)

// Role identifies a participant within a session. The creator is
// always RoleA, the joiner RoleB.
type Role uint8

const (
	RoleNone Role = 0
	RoleA    Role = 1
	RoleB    Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleA:
		return "a"
	case RoleB:
		return "b"
	}
	return "none"
}

// Phase is the lifecycle stage of a session.
type Phase string

const (
	PhaseAwaitingOpponent Phase = "awaiting_opponent"
	PhaseActive           Phase = "active"
	PhaseFinished         Phase = "finished"
)

// HitGrid records shot results against one player's board, row-major.
type HitGrid [GridCells]CellState

// Board is a player's secret ship placement, row-major: CellWater or CellShip.
type Board [GridCells]byte

// Commitment is the SHA-256 digest a player publishes before the game:
// sha256(board || salt).
type Commitment [32]byte

// Salt is the 32-byte blinding value appended to the board before hashing.
type Salt [32]byte

// cellIndex maps (x, y) to the row-major cell offset.
func cellIndex(x, y int) int {
	return x + y*GridSize
}

// ComputeCommitment hashes a board with its salt the same way clients do
// when committing.
func ComputeCommitment(board Board, salt Salt) Commitment {
	buf := make([]byte, 0, GridCells+len(salt))
	buf = append(buf, board[:]...)
	buf = append(buf, salt[:]...)
	return Commitment(sha256.Sum256(buf))
}

// ShipCount returns how many cells of the board carry a ship.
func (b Board) ShipCount() int {
	n := 0
	for _, c := range b {
		if c == CellShip {
			n++
		}
	}
	return n
}

// Bytes returns the board as a raw byte slice for storage.
func (b Board) Bytes() []byte {
	out := make([]byte, GridCells)
	copy(out, b[:])
	return out
}

// BoardFromBytes restores a board from its storage form.
func BoardFromBytes(raw []byte) (Board, error) {
	var b Board
	if len(raw) != GridCells {
		return b, fmt.Errorf("board must be %d bytes, got %d", GridCells, len(raw))
	}
	copy(b[:], raw)
	return b, nil
}

// Bytes returns the grid as a raw byte slice for storage.
func (g HitGrid) Bytes() []byte {
	out := make([]byte, GridCells)
	for i, c := range g {
		out[i] = byte(c)
	}
	return out
}

// HitGridFromBytes restores a hit grid from its storage form.
func HitGridFromBytes(raw []byte) (HitGrid, error) {
	var g HitGrid
	if len(raw) != GridCells {
		return g, fmt.Errorf("hit grid must be %d bytes, got %d", GridCells, len(raw))
	}
	for i := range g {
		g[i] = CellState(raw[i])
	}
	return g, nil
}

// verifyShotConsistency checks a revealed board against the shot results
// its owner reported during the game. Every reported miss must sit on
// water and every reported hit on a ship; untouched cells are free.
func verifyShotConsistency(board Board, grid HitGrid) error {
	for i := 0; i < GridCells; i++ {
		switch grid[i] {
		case CellMiss:
			if board[i] != CellWater {
				return ErrCheatingDetected
			}
		case CellHit:
			if board[i] != CellShip {
				return ErrCheatingDetected
			}
		}
	}
	return nil
}
