package handlers

import (
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	"battleship_backend/internal/battleship"
	"battleship_backend/internal/logger"
	"battleship_backend/internal/repository"

	"github.com/gin-gonic/gin"
)

type CreateSessionRequest struct {
	Commitment string `json:"commitment" binding:"required"`
}

type JoinSessionRequest struct {
	Commitment string `json:"commitment" binding:"required"`
}

// Pointer fields so that 0 and false pass "required" validation.
type FireRequest struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
}

type ResolveRequest struct {
	WasHit *bool `json:"was_hit" binding:"required"`
}

type RevealRequest struct {
	Board []int  `json:"board" binding:"required"`
	Salt  string `json:"salt" binding:"required"`
}

// CreateSession opens a new session seeded with the caller's board
// commitment. The caller waits as player A until someone joins.
func (h *Handler) CreateSession(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req CreateSessionRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	commitment, err := parseCommitment(req.Commitment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commitment must be 32 bytes hex"})
		return
	}

	session, err := h.Arena.CreateSession(c.Request.Context(), playerID, commitment)
	if err != nil {
		respondProtocolError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.Arena.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondProtocolError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(session))
}

func (h *Handler) ListOpenSessions(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	sessions, err := h.Arena.ListOpenSessions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}

	list := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		list = append(list, gin.H{
			"id":         s.ID,
			"player_a":   s.PlayerAID,
			"created_at": s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list})
}

func (h *Handler) JoinSession(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req JoinSessionRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	commitment, err := parseCommitment(req.Commitment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commitment must be 32 bytes hex"})
		return
	}

	session, err := h.Arena.JoinSession(c.Request.Context(), c.Param("id"), playerID, commitment)
	if err != nil {
		respondProtocolError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

func (h *Handler) FireShot(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req FireRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	session, err := h.Arena.FireShot(c.Request.Context(), c.Param("id"), playerID, *req.X, *req.Y)
	if err != nil {
		respondProtocolError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

func (h *Handler) ResolveShot(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req ResolveRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	session, err := h.Arena.ResolveShot(c.Request.Context(), c.Param("id"), playerID, *req.WasHit)
	if err != nil {
		respondProtocolError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

func (h *Handler) RevealBoard(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req RevealRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	board, err := boardFromInts(req.Board)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	salt, err := parseSalt(req.Salt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "salt must be 32 bytes hex"})
		return
	}

	session, err := h.Arena.RevealBoard(c.Request.Context(), c.Param("id"), playerID, board, salt)
	if err != nil {
		respondProtocolError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

// sessionView renders a session snapshot for the wire. Everything in the
// record is reported information, so nothing here needs redacting; the
// secret boards show up only after their owners reveal them.
func sessionView(s *battleship.Session) gin.H {
	view := gin.H{
		"id":           s.ID,
		"phase":        string(s.Phase),
		"turn":         s.Turn.String(),
		"player_a":     s.PlayerAID,
		"player_b":     s.PlayerBID,
		"commitment_a": hex.EncodeToString(s.CommitmentA[:]),
		"commitment_b": "",
		"hits_on_a":    gridInts(s.HitsOnA),
		"hits_on_b":    gridInts(s.HitsOnB),
		"damage_a":     s.DamageA,
		"damage_b":     s.DamageB,
		"winner_id":    s.WinnerID,
		"revealed_a":   s.RevealedA,
		"revealed_b":   s.RevealedB,
		"created_at":   s.CreatedAt,
		"updated_at":   s.UpdatedAt,
	}

	if s.PlayerBID != 0 {
		view["commitment_b"] = hex.EncodeToString(s.CommitmentB[:])
	}
	if s.Pending != nil {
		view["pending"] = gin.H{
			"x":        s.Pending.X,
			"y":        s.Pending.Y,
			"firer_id": s.Pending.FirerID,
		}
	}
	if s.BoardA != nil {
		view["board_a"] = boardInts(*s.BoardA)
	}
	if s.BoardB != nil {
		view["board_b"] = boardInts(*s.BoardB)
	}
	return view
}

func parseCommitment(s string) (battleship.Commitment, error) {
	var commitment battleship.Commitment
	raw, err := hex.DecodeString(s)
	if err != nil {
		return commitment, err
	}
	if len(raw) != len(commitment) {
		return commitment, errors.New("wrong commitment length")
	}
	copy(commitment[:], raw)
	return commitment, nil
}

func parseSalt(s string) (battleship.Salt, error) {
	var salt battleship.Salt
	raw, err := hex.DecodeString(s)
	if err != nil {
		return salt, err
	}
	if len(raw) != len(salt) {
		return salt, errors.New("wrong salt length")
	}
	copy(salt[:], raw)
	return salt, nil
}

// boardFromInts converts the wire form (flat array of 0/1) into a board.
func boardFromInts(cells []int) (battleship.Board, error) {
	var board battleship.Board
	if len(cells) != battleship.GridCells {
		return board, errors.New("board must have exactly 100 cells")
	}
	for i, v := range cells {
		switch v {
		case 0:
			board[i] = battleship.CellWater
		case 1:
			board[i] = battleship.CellShip
		default:
			return board, errors.New("board cells must be 0 or 1")
		}
	}
	return board, nil
}

func boardInts(b battleship.Board) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func gridInts(g battleship.HitGrid) []int {
	out := make([]int, len(g))
	for i, v := range g {
		out[i] = int(v)
	}
	return out
}

// protocolStatus maps a session operation error to its HTTP status and
// stable machine-readable code.
func protocolStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, battleship.ErrInvalidCoordinate):
		return http.StatusBadRequest, "INVALID_COORDINATE"
	case errors.Is(err, battleship.ErrNotAPlayer):
		return http.StatusForbidden, "NOT_A_PLAYER"
	case errors.Is(err, battleship.ErrNotYourTurn):
		return http.StatusForbidden, "NOT_YOUR_TURN"
	case errors.Is(err, battleship.ErrNotDefender):
		return http.StatusForbidden, "NOT_DEFENDER"
	case errors.Is(err, battleship.ErrSelfPlay):
		return http.StatusForbidden, "SELF_PLAY"
	case errors.Is(err, battleship.ErrSessionFull):
		return http.StatusConflict, "SESSION_FULL"
	case errors.Is(err, battleship.ErrNotReady):
		return http.StatusConflict, "NOT_READY"
	case errors.Is(err, battleship.ErrGameOver):
		return http.StatusConflict, "GAME_OVER"
	case errors.Is(err, battleship.ErrGameNotOver):
		return http.StatusConflict, "GAME_NOT_OVER"
	case errors.Is(err, battleship.ErrShotAlreadyPending):
		return http.StatusConflict, "SHOT_ALREADY_PENDING"
	case errors.Is(err, battleship.ErrNoPendingShot):
		return http.StatusConflict, "NO_PENDING_SHOT"
	case errors.Is(err, battleship.ErrAlreadyShotHere):
		return http.StatusConflict, "ALREADY_SHOT_HERE"
	case errors.Is(err, battleship.ErrAlreadyRevealed):
		return http.StatusConflict, "ALREADY_REVEALED"
	case errors.Is(err, battleship.ErrCommitmentMismatch):
		return http.StatusUnprocessableEntity, "COMMITMENT_MISMATCH"
	case errors.Is(err, battleship.ErrInvalidFleetConfiguration):
		return http.StatusUnprocessableEntity, "INVALID_FLEET_CONFIGURATION"
	case errors.Is(err, battleship.ErrCheatingDetected):
		return http.StatusUnprocessableEntity, "CHEATING_DETECTED"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func respondProtocolError(c *gin.Context, err error) {
	status, code := protocolStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("session operation failed", "error", err)
		c.JSON(status, gin.H{"error": "internal error", "code": code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
