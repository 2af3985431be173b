package ws

import (
	"time"

	"battleship_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one websocket connection subscribed to a session feed.
// The feed is one-way: incoming frames only keep the connection alive.
type Client struct {
	PlayerID  int64
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte

	hub *Hub
}

func NewClient(playerID int64, sessionID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		PlayerID:  playerID,
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, 64),
		hub:       hub,
	}
}

// Run subscribes the client and pumps until the peer goes away.
func (c *Client) Run() {
	c.hub.Subscribe(c.SessionID, c)
	go c.writePump()
	c.readPump()
}

//read
func (c *Client) readPump() {
	defer func() {
		// Unsubscribe completes before Send closes, so no publish can
		// hit a closed channel.
		c.hub.Unsubscribe(c.SessionID, c)
		close(c.Send)
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("feed read error", "player_id", c.PlayerID, "error", err)
			}
			return
		}
		// Feed subscribers have nothing to say; drop their frames.
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
