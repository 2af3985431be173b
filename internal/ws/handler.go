package ws

import (
	"errors"
	"net/http"

	"battleship_backend/internal/battleship"
	"battleship_backend/internal/repository"
	"battleship_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleFeed upgrades the connection and attaches it to the session's
// event feed. Only the two participants of the session may subscribe.
// allowedOrigins empty accepts any origin, same as the CORS layer.
func HandleFeed(hub *Hub, sessions *repository.SessionRepository, allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		playerID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		sessionID := c.Query("session")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session required"})
			return
		}

		session, err := sessions.Get(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
			return
		}
		if session.RoleOf(playerID) == battleship.RoleNone {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
			return
		}

		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := NewClient(playerID, sessionID, conn, hub)
		go client.Run()
	}
}
