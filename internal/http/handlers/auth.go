package handlers

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"net/http"

	"battleship_backend/internal/domain"
	"battleship_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

type AuthRequest struct {
	PublicKey string `json:"public_key" binding:"required"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	Username  string `json:"username"`
}

// Auth logs a player in with an ed25519 proof: the client signs
// "battleship-login:<timestamp>" with its private key and sends the hex
// public key, the timestamp and the hex signature. The public key IS the
// account; the first login creates the player row.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	// DEV MODE: accept any well-formed key without a signature
	if h.DevMode {
		raw, err := hex.DecodeString(req.PublicKey)
		if err != nil || len(raw) != ed25519.PublicKeySize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid public key"})
			return
		}
	} else {
		if _, ok := service.VerifyLoginProof(req.PublicKey, req.Timestamp, req.Signature); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale login proof"})
			return
		}
	}

	ctx := c.Request.Context()

	player, err := h.PlayerRepo.GetByPublicKey(ctx, req.PublicKey)
	if errors.Is(err, pgx.ErrNoRows) {
		player = &domain.Player{
			PublicKey: req.PublicKey,
			Username:  req.Username,
		}
		if err := h.PlayerRepo.Create(ctx, player); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create player"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load player"})
		return
	} else if req.Username != "" && req.Username != player.Username {
		if err := h.PlayerRepo.UpdateUsername(ctx, player.ID, req.Username); err == nil {
			player.Username = req.Username
		}
	}

	token, err := service.GenerateJWT(player.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	h.AuditService.LogLogin(ctx, player.ID, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"player": gin.H{
			"id":         player.ID,
			"public_key": player.PublicKey,
			"username":   player.Username,
			"created_at": player.CreatedAt,
		},
	})
}
