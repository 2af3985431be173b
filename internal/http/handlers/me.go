package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	ctx := c.Request.Context()
	player, err := h.PlayerRepo.GetByID(ctx, playerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         player.ID,
		"public_key": player.PublicKey,
		"username":   player.Username,
		"created_at": player.CreatedAt,
	})
}

func (h *Handler) MyMatches(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	ctx := c.Request.Context()

	matches, err := h.MatchRepo.GetByPlayer(ctx, playerID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get matches"})
		return
	}

	// Stats over the last month
	since := time.Now().AddDate(0, -1, 0)
	stats, _ := h.MatchRepo.GetPlayerStats(ctx, playerID, since)

	c.JSON(http.StatusOK, gin.H{"matches": matches, "stats": stats})
}

// MyAudit returns the caller's own audit trail: logins, session
// lifecycle, shots and reveal verdicts.
func (h *Handler) MyAudit(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	logs, err := h.AuditService.GetPlayerAuditLogs(c.Request.Context(), playerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": logs})
}
