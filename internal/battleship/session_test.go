package battleship

import (
	"errors"
	"testing"
)

const (
	alice int64 = 101
	bob   int64 = 202
	eve   int64 = 303
)

// testBoard returns a legal fleet: ships of length 5, 4, 3, 3 and 2
// laid out horizontally on rows 0 through 4.
func testBoard() Board {
	var b Board
	lengths := []int{5, 4, 3, 3, 2}
	for y, l := range lengths {
		for x := 0; x < l; x++ {
			b[cellIndex(x, y)] = CellShip
		}
	}
	return b
}

func testSalt(seed byte) Salt {
	var s Salt
	for i := range s {
		s[i] = seed
	}
	return s
}

// shipCells lists the row-major indexes of all ship cells on a board.
func shipCells(b Board) []int {
	var out []int
	for i, c := range b {
		if c == CellShip {
			out = append(out, i)
		}
	}
	return out
}

// waterCells lists the row-major indexes of all water cells on a board.
func waterCells(b Board) []int {
	var out []int
	for i, c := range b {
		if c == CellWater {
			out = append(out, i)
		}
	}
	return out
}

func activeSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("s1", alice, ComputeCommitment(testBoard(), testSalt(1)))
	if err := s.Join(bob, ComputeCommitment(testBoard(), testSalt(2))); err != nil {
		t.Fatalf("join: %v", err)
	}
	return s
}

// playShot fires at (x, y) and has the defender resolve it.
func playShot(t *testing.T, s *Session, firerID int64, x, y int, hit bool) {
	t.Helper()
	if err := s.Fire(firerID, x, y); err != nil {
		t.Fatalf("fire (%d,%d) by %d: %v", x, y, firerID, err)
	}
	defenderID := s.PlayerAID
	if firerID == s.PlayerAID {
		defenderID = s.PlayerBID
	}
	if err := s.Resolve(defenderID, hit); err != nil {
		t.Fatalf("resolve (%d,%d) by %d: %v", x, y, defenderID, err)
	}
}

// sinkFleet plays a full game in which the attacker truthfully sinks the
// defender's whole fleet while the defender's counter-shots all miss.
func sinkFleet(t *testing.T, s *Session, attackerID, defenderID int64) {
	t.Helper()
	ships := shipCells(testBoard())
	water := waterCells(testBoard())
	for i, cell := range ships {
		playShot(t, s, attackerID, cell%GridSize, cell/GridSize, true)
		if s.Phase == PhaseFinished {
			break
		}
		back := water[i]
		playShot(t, s, defenderID, back%GridSize, back/GridSize, false)
	}
}

func TestNewSessionInitialState(t *testing.T) {
	commitment := ComputeCommitment(testBoard(), testSalt(1))
	s := NewSession("s1", alice, commitment)

	if s.Phase != PhaseAwaitingOpponent {
		t.Fatalf("phase = %q, want %q", s.Phase, PhaseAwaitingOpponent)
	}
	if s.Turn != RoleA {
		t.Errorf("turn = %v, want RoleA", s.Turn)
	}
	if s.PlayerBID != 0 {
		t.Errorf("player B = %d, want 0", s.PlayerBID)
	}
	if s.CommitmentA != commitment {
		t.Errorf("commitment A not stored")
	}
	if s.Pending != nil {
		t.Errorf("new session has a pending shot")
	}
	if s.WinnerID != 0 {
		t.Errorf("winner = %d, want 0", s.WinnerID)
	}
	for i := 0; i < GridCells; i++ {
		if s.HitsOnA[i] != CellUntouched || s.HitsOnB[i] != CellUntouched {
			t.Fatalf("grids not empty at cell %d", i)
		}
	}
}

func TestJoin(t *testing.T) {
	commitment := ComputeCommitment(testBoard(), testSalt(2))

	t.Run("activates the session", func(t *testing.T) {
		s := NewSession("s1", alice, ComputeCommitment(testBoard(), testSalt(1)))
		if err := s.Join(bob, commitment); err != nil {
			t.Fatalf("join: %v", err)
		}
		if s.Phase != PhaseActive {
			t.Errorf("phase = %q, want %q", s.Phase, PhaseActive)
		}
		if s.PlayerBID != bob {
			t.Errorf("player B = %d, want %d", s.PlayerBID, bob)
		}
		if s.CommitmentB != commitment {
			t.Errorf("commitment B not stored")
		}
		if s.Turn != RoleA {
			t.Errorf("turn = %v, creator must move first", s.Turn)
		}
	})

	t.Run("rejects a third player", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Join(eve, commitment); !errors.Is(err, ErrSessionFull) {
			t.Fatalf("err = %v, want ErrSessionFull", err)
		}
	})

	t.Run("rejects the creator joining themselves", func(t *testing.T) {
		s := NewSession("s1", alice, ComputeCommitment(testBoard(), testSalt(1)))
		if err := s.Join(alice, commitment); !errors.Is(err, ErrSelfPlay) {
			t.Fatalf("err = %v, want ErrSelfPlay", err)
		}
		if s.Phase != PhaseAwaitingOpponent {
			t.Errorf("failed join must not change phase")
		}
	})
}

func TestRoleOf(t *testing.T) {
	s := NewSession("s1", alice, ComputeCommitment(testBoard(), testSalt(1)))

	if got := s.RoleOf(alice); got != RoleA {
		t.Errorf("RoleOf(alice) = %v, want RoleA", got)
	}
	// Player B's seat is empty; a zero id must not claim it.
	if got := s.RoleOf(0); got != RoleNone {
		t.Errorf("RoleOf(0) = %v, want RoleNone", got)
	}
	if got := s.RoleOf(bob); got != RoleNone {
		t.Errorf("RoleOf(bob) before join = %v, want RoleNone", got)
	}

	if err := s.Join(bob, ComputeCommitment(testBoard(), testSalt(2))); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := s.RoleOf(bob); got != RoleB {
		t.Errorf("RoleOf(bob) = %v, want RoleB", got)
	}
	if got := s.RoleOf(eve); got != RoleNone {
		t.Errorf("RoleOf(eve) = %v, want RoleNone", got)
	}
}

func TestFireRejections(t *testing.T) {
	t.Run("before opponent joins", func(t *testing.T) {
		s := NewSession("s1", alice, ComputeCommitment(testBoard(), testSalt(1)))
		if err := s.Fire(alice, 0, 0); !errors.Is(err, ErrNotReady) {
			t.Fatalf("err = %v, want ErrNotReady", err)
		}
	})

	t.Run("coordinate out of range", func(t *testing.T) {
		s := activeSession(t)
		for _, c := range [][2]int{{10, 0}, {0, 10}, {-1, 0}, {0, -1}, {10, 10}} {
			if err := s.Fire(alice, c[0], c[1]); !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("fire (%d,%d): err = %v, want ErrInvalidCoordinate", c[0], c[1], err)
			}
		}
	})

	t.Run("shot already pending", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Fire(alice, 0, 0); err != nil {
			t.Fatalf("fire: %v", err)
		}
		if err := s.Fire(alice, 1, 0); !errors.Is(err, ErrShotAlreadyPending) {
			t.Fatalf("err = %v, want ErrShotAlreadyPending", err)
		}
		// The pending check outranks identity, so even a stranger
		// sees the pending error first.
		if err := s.Fire(eve, 1, 0); !errors.Is(err, ErrShotAlreadyPending) {
			t.Fatalf("stranger err = %v, want ErrShotAlreadyPending", err)
		}
	})

	t.Run("stranger", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Fire(eve, 0, 0); !errors.Is(err, ErrNotAPlayer) {
			t.Fatalf("err = %v, want ErrNotAPlayer", err)
		}
	})

	t.Run("out of turn", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Fire(bob, 0, 0); !errors.Is(err, ErrNotYourTurn) {
			t.Fatalf("err = %v, want ErrNotYourTurn", err)
		}
	})

	t.Run("cell shot twice", func(t *testing.T) {
		s := activeSession(t)
		playShot(t, s, alice, 3, 3, false)
		playShot(t, s, bob, 5, 5, false)
		if err := s.Fire(alice, 3, 3); !errors.Is(err, ErrAlreadyShotHere) {
			t.Fatalf("err = %v, want ErrAlreadyShotHere", err)
		}
	})

	t.Run("after the game finished", func(t *testing.T) {
		s := activeSession(t)
		sinkFleet(t, s, alice, bob)
		if err := s.Fire(bob, 9, 9); !errors.Is(err, ErrGameOver) {
			t.Fatalf("err = %v, want ErrGameOver", err)
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("miss marks the cell and passes the turn", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Fire(alice, 4, 7); err != nil {
			t.Fatalf("fire: %v", err)
		}
		if err := s.Resolve(bob, false); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got := s.HitsOnB[cellIndex(4, 7)]; got != CellMiss {
			t.Errorf("cell = %v, want CellMiss", got)
		}
		if s.DamageB != 0 {
			t.Errorf("damage B = %d, want 0", s.DamageB)
		}
		if s.Pending != nil {
			t.Errorf("pending shot not cleared")
		}
		if s.Turn != RoleB {
			t.Errorf("turn = %v, want RoleB", s.Turn)
		}
	})

	t.Run("hit marks the cell and raises damage", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Fire(alice, 0, 0); err != nil {
			t.Fatalf("fire: %v", err)
		}
		if err := s.Resolve(bob, true); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got := s.HitsOnB[cellIndex(0, 0)]; got != CellHit {
			t.Errorf("cell = %v, want CellHit", got)
		}
		if s.DamageB != 1 {
			t.Errorf("damage B = %d, want 1", s.DamageB)
		}
		if s.Phase != PhaseActive {
			t.Errorf("phase = %q, one hit must not finish the game", s.Phase)
		}
		if s.Turn != RoleB {
			t.Errorf("turn = %v, want RoleB", s.Turn)
		}
	})

	t.Run("without a pending shot", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Resolve(bob, false); !errors.Is(err, ErrNoPendingShot) {
			t.Fatalf("err = %v, want ErrNoPendingShot", err)
		}
	})

	t.Run("stranger", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Fire(alice, 0, 0); err != nil {
			t.Fatalf("fire: %v", err)
		}
		if err := s.Resolve(eve, false); !errors.Is(err, ErrNotAPlayer) {
			t.Fatalf("err = %v, want ErrNotAPlayer", err)
		}
	})

	t.Run("firer cannot resolve their own shot", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Fire(alice, 0, 0); err != nil {
			t.Fatalf("fire: %v", err)
		}
		if err := s.Resolve(alice, false); !errors.Is(err, ErrNotDefender) {
			t.Fatalf("err = %v, want ErrNotDefender", err)
		}
		if s.Pending == nil {
			t.Errorf("rejected resolve must keep the shot pending")
		}
	})

	t.Run("before opponent joins", func(t *testing.T) {
		s := NewSession("s1", alice, ComputeCommitment(testBoard(), testSalt(1)))
		if err := s.Resolve(alice, false); !errors.Is(err, ErrNotReady) {
			t.Fatalf("err = %v, want ErrNotReady", err)
		}
	})

	t.Run("after the game finished", func(t *testing.T) {
		s := activeSession(t)
		sinkFleet(t, s, alice, bob)
		if err := s.Resolve(bob, false); !errors.Is(err, ErrGameOver) {
			t.Fatalf("err = %v, want ErrGameOver", err)
		}
	})
}

func TestTurnAlternation(t *testing.T) {
	s := activeSession(t)

	for i := 0; i < 5; i++ {
		if s.Turn != RoleA {
			t.Fatalf("round %d: turn = %v, want RoleA", i, s.Turn)
		}
		playShot(t, s, alice, i, 9, false)
		if s.Turn != RoleB {
			t.Fatalf("round %d: turn = %v, want RoleB", i, s.Turn)
		}
		playShot(t, s, bob, i, 9, false)
	}
}

func TestWinAtSeventeenHits(t *testing.T) {
	s := activeSession(t)
	ships := shipCells(testBoard())
	water := waterCells(testBoard())

	for i, cell := range ships[:FleetCells-1] {
		playShot(t, s, alice, cell%GridSize, cell/GridSize, true)
		back := water[i]
		playShot(t, s, bob, back%GridSize, back/GridSize, false)
	}
	if s.DamageB != FleetCells-1 {
		t.Fatalf("damage B = %d, want %d", s.DamageB, FleetCells-1)
	}
	if s.Phase != PhaseActive {
		t.Fatalf("phase = %q after %d hits, want active", s.Phase, FleetCells-1)
	}

	last := ships[FleetCells-1]
	playShot(t, s, alice, last%GridSize, last/GridSize, true)

	if s.Phase != PhaseFinished {
		t.Fatalf("phase = %q, want finished", s.Phase)
	}
	if s.WinnerID != alice {
		t.Errorf("winner = %d, want %d", s.WinnerID, alice)
	}
	if s.DamageB != FleetCells {
		t.Errorf("damage B = %d, want %d", s.DamageB, FleetCells)
	}
	if s.Pending != nil {
		t.Errorf("pending shot must be cleared on the final hit")
	}

	hits, other := 0, 0
	for _, c := range s.HitsOnB {
		switch c {
		case CellHit:
			hits++
		case CellMiss:
			other++
		}
	}
	if hits != FleetCells || other != 0 {
		t.Errorf("grid B has %d hits and %d misses, want %d and 0", hits, other, FleetCells)
	}
}

// A resolved shot hands the turn to the defender; the previous firer
// trying again right away is rejected.
func TestFireOutOfTurnAfterResolve(t *testing.T) {
	s := activeSession(t)
	if err := s.Fire(alice, 0, 0); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if err := s.Resolve(bob, false); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := s.HitsOnB[cellIndex(0, 0)]; got != CellMiss {
		t.Fatalf("cell = %v, want CellMiss", got)
	}
	if err := s.Fire(alice, 1, 0); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
	if err := s.Fire(bob, 1, 0); err != nil {
		t.Fatalf("defender's fire: %v", err)
	}
}

func TestComputeCommitment(t *testing.T) {
	board := testBoard()
	salt := testSalt(7)
	c1 := ComputeCommitment(board, salt)
	c2 := ComputeCommitment(board, salt)
	if c1 != c2 {
		t.Fatalf("commitment is not deterministic")
	}

	flipped := board
	flipped[99] = CellShip
	if ComputeCommitment(flipped, salt) == c1 {
		t.Errorf("board change did not change the commitment")
	}

	otherSalt := testSalt(8)
	if ComputeCommitment(board, otherSalt) == c1 {
		t.Errorf("salt change did not change the commitment")
	}

	bitFlip := salt
	bitFlip[31] ^= 0x01
	if ComputeCommitment(board, bitFlip) == c1 {
		t.Errorf("single-bit salt change did not change the commitment")
	}
}

func TestRevealRejections(t *testing.T) {
	board := testBoard()

	t.Run("while the game is running", func(t *testing.T) {
		s := activeSession(t)
		if err := s.Reveal(alice, board, testSalt(1)); !errors.Is(err, ErrGameNotOver) {
			t.Fatalf("err = %v, want ErrGameNotOver", err)
		}
	})

	t.Run("stranger", func(t *testing.T) {
		s := activeSession(t)
		sinkFleet(t, s, alice, bob)
		if err := s.Reveal(eve, board, testSalt(1)); !errors.Is(err, ErrNotAPlayer) {
			t.Fatalf("err = %v, want ErrNotAPlayer", err)
		}
	})

	t.Run("twice by the same player", func(t *testing.T) {
		s := activeSession(t)
		sinkFleet(t, s, alice, bob)
		if err := s.Reveal(alice, board, testSalt(1)); err != nil {
			t.Fatalf("first reveal: %v", err)
		}
		if err := s.Reveal(alice, board, testSalt(1)); !errors.Is(err, ErrAlreadyRevealed) {
			t.Fatalf("err = %v, want ErrAlreadyRevealed", err)
		}
	})

	t.Run("wrong salt", func(t *testing.T) {
		s := activeSession(t)
		sinkFleet(t, s, alice, bob)
		if err := s.Reveal(alice, board, testSalt(9)); !errors.Is(err, ErrCommitmentMismatch) {
			t.Fatalf("err = %v, want ErrCommitmentMismatch", err)
		}
		if s.RevealedA {
			t.Errorf("failed reveal must not mark the board revealed")
		}
	})

	t.Run("wrong board", func(t *testing.T) {
		s := activeSession(t)
		sinkFleet(t, s, alice, bob)
		tampered := board
		tampered[99] = CellShip
		if err := s.Reveal(alice, tampered, testSalt(1)); !errors.Is(err, ErrCommitmentMismatch) {
			t.Fatalf("err = %v, want ErrCommitmentMismatch", err)
		}
	})

	t.Run("fleet with the wrong cell count", func(t *testing.T) {
		short := testBoard()
		short[0] = CellWater // 16 ship cells
		salt := testSalt(3)
		s := NewSession("s1", alice, ComputeCommitment(short, salt))
		if err := s.Join(bob, ComputeCommitment(testBoard(), testSalt(2))); err != nil {
			t.Fatalf("join: %v", err)
		}
		// Alice opens with a miss at (9,9), a cell sinkFleet never
		// touches, so the turn is Bob's when the sinking starts.
		playShot(t, s, alice, 9, 9, false)
		// Bob sinks Alice. Reaching 17 damage on a 16-ship board
		// forces a dishonest report too, but the fleet count is
		// checked before shot consistency, so the count error wins.
		sinkFleet(t, s, bob, alice)
		if s.WinnerID != bob {
			t.Fatalf("winner = %d, want %d", s.WinnerID, bob)
		}
		err := s.Reveal(alice, short, salt)
		if !errors.Is(err, ErrInvalidFleetConfiguration) {
			t.Fatalf("err = %v, want ErrInvalidFleetConfiguration", err)
		}
	})
}

// The defender who reported a miss on a cell that actually carries a
// ship is caught at reveal time.
func TestRevealCatchesMissOnShip(t *testing.T) {
	board := testBoard()
	salt := testSalt(2)
	s := NewSession("s1", alice, ComputeCommitment(testBoard(), testSalt(1)))
	if err := s.Join(bob, ComputeCommitment(board, salt)); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Alice fires at a ship cell; Bob lies and calls it a miss.
	playShot(t, s, alice, 0, 0, false)

	// Bob then honestly sinks Alice's fleet and wins. Alice's return
	// fire goes to water cells, which never collide with her earlier
	// shot at (0,0) since that cell carries a ship.
	ships := shipCells(testBoard())
	water := waterCells(testBoard())
	for i, cell := range ships {
		playShot(t, s, bob, cell%GridSize, cell/GridSize, true)
		if s.Phase == PhaseFinished {
			break
		}
		back := water[i]
		playShot(t, s, alice, back%GridSize, back/GridSize, false)
	}
	if s.WinnerID != bob {
		t.Fatalf("winner = %d, want %d", s.WinnerID, bob)
	}

	err := s.Reveal(bob, board, salt)
	if !errors.Is(err, ErrCheatingDetected) {
		t.Fatalf("err = %v, want ErrCheatingDetected", err)
	}
	if s.RevealedB {
		t.Errorf("cheater's board must not count as revealed")
	}
	if s.BoardB != nil {
		t.Errorf("cheater's board must not be stored")
	}

	// The honest winner still reveals cleanly.
	if err := s.Reveal(alice, testBoard(), testSalt(1)); err != nil {
		t.Fatalf("honest reveal: %v", err)
	}
}

// The defender who confirmed a hit on open water is caught at reveal time.
func TestRevealCatchesHitOnWater(t *testing.T) {
	board := testBoard()
	salt := testSalt(2)
	s := NewSession("s1", alice, ComputeCommitment(testBoard(), testSalt(1)))
	if err := s.Join(bob, ComputeCommitment(board, salt)); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Alice fires at water; Bob confirms a hit that never happened.
	playShot(t, s, alice, 9, 9, true)
	playShot(t, s, bob, 9, 9, false)

	// Alice keeps firing truthfully confirmed ship cells until the
	// fake hit plus sixteen real ones end the game.
	ships := shipCells(board)
	water := waterCells(testBoard())
	for i, cell := range ships[:FleetCells-1] {
		playShot(t, s, alice, cell%GridSize, cell/GridSize, true)
		if s.Phase == PhaseFinished {
			break
		}
		back := water[i]
		playShot(t, s, bob, back%GridSize, back/GridSize, false)
	}
	if s.Phase != PhaseFinished {
		t.Fatalf("phase = %q, want finished", s.Phase)
	}
	if s.WinnerID != alice {
		t.Fatalf("winner = %d, want %d", s.WinnerID, alice)
	}

	err := s.Reveal(bob, board, salt)
	if !errors.Is(err, ErrCheatingDetected) {
		t.Fatalf("err = %v, want ErrCheatingDetected", err)
	}
}

// A clean game: attacker sinks the fleet, both players reveal, every
// check passes and both boards end up stored on the session.
func TestHonestGameRevealsClean(t *testing.T) {
	s := activeSession(t)
	sinkFleet(t, s, alice, bob)

	if s.Phase != PhaseFinished {
		t.Fatalf("phase = %q, want finished", s.Phase)
	}
	if err := s.Reveal(bob, testBoard(), testSalt(2)); err != nil {
		t.Fatalf("reveal B: %v", err)
	}
	if err := s.Reveal(alice, testBoard(), testSalt(1)); err != nil {
		t.Fatalf("reveal A: %v", err)
	}
	if !s.RevealedA || !s.RevealedB {
		t.Errorf("revealed flags = %v/%v, want true/true", s.RevealedA, s.RevealedB)
	}
	if s.BoardA == nil || s.BoardB == nil {
		t.Fatalf("revealed boards must be stored")
	}
	if *s.BoardB != testBoard() {
		t.Errorf("stored board B differs from the revealed one")
	}
}

func TestCellIndexRowMajor(t *testing.T) {
	cases := []struct {
		x, y, want int
	}{
		{0, 0, 0},
		{9, 0, 9},
		{0, 1, 10},
		{3, 2, 23},
		{9, 9, 99},
	}
	for _, c := range cases {
		if got := cellIndex(c.x, c.y); got != c.want {
			t.Errorf("cellIndex(%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}

func TestGridCodec(t *testing.T) {
	var g HitGrid
	g[0] = CellMiss
	g[23] = CellHit
	g[99] = CellHit

	restored, err := HitGridFromBytes(g.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if restored != g {
		t.Fatalf("round trip changed the grid")
	}

	if _, err := HitGridFromBytes(make([]byte, 99)); err == nil {
		t.Errorf("short payload must be rejected")
	}
}

func TestBoardCodec(t *testing.T) {
	b := testBoard()
	restored, err := BoardFromBytes(b.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if restored != b {
		t.Fatalf("round trip changed the board")
	}
	if restored.ShipCount() != FleetCells {
		t.Fatalf("ship count = %d, want %d", restored.ShipCount(), FleetCells)
	}

	if _, err := BoardFromBytes(make([]byte, 101)); err == nil {
		t.Errorf("oversized payload must be rejected")
	}
}
