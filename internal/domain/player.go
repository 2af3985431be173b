package domain

import "time"

// Player is an account identified by its ed25519 public key. The key is
// stored hex-encoded; the username is optional display noise.
type Player struct {
	ID        int64     `db:"id" json:"id"`
	PublicKey string    `db:"public_key" json:"public_key"`
	Username  string    `db:"username" json:"username,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
