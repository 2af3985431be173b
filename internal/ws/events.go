package ws

// Event is one feed message, fanned out to every subscriber of a
// session. Types mirror the protocol steps: player_joined, shot_fired,
// shot_resolved, game_finished, board_revealed, cheating_detected.
type Event struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
