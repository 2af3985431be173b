package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"battleship_backend/internal/db"
	"battleship_backend/internal/domain"
	"battleship_backend/internal/repository"
	"battleship_backend/internal/service"

	"github.com/jackc/pgx/v5"
)

// Creates (or finds) a test player and prints everything needed to call
// the API by hand: the keypair, a fresh login proof for POST /auth, and
// a ready JWT. Set PLAYER_PRIVATE_KEY to reuse an identity.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	var (
		pub  ed25519.PublicKey
		priv ed25519.PrivateKey
		err  error
	)
	if pk := os.Getenv("PLAYER_PRIVATE_KEY"); pk != "" {
		raw, err := hex.DecodeString(pk)
		if err != nil || len(raw) != ed25519.PrivateKeySize {
			log.Fatal("PLAYER_PRIVATE_KEY must be 64 bytes hex")
		}
		priv = ed25519.PrivateKey(raw)
		pub = priv.Public().(ed25519.PublicKey)
	} else {
		pub, priv, err = ed25519.GenerateKey(rand.Reader)
		if err != nil {
			log.Fatalf("generate key: %v", err)
		}
	}
	pubHex := hex.EncodeToString(pub)

	ctx := context.Background()
	pool := db.Connect(ctx, dsn)
	defer pool.Close()

	repo := repository.NewPlayerRepository(pool)

	player, err := repo.GetByPublicKey(ctx, pubHex)
	if errors.Is(err, pgx.ErrNoRows) {
		player = &domain.Player{PublicKey: pubHex, Username: "testplayer"}
		if err := repo.Create(ctx, player); err != nil {
			log.Fatalf("create player failed: %v", err)
		}
		log.Printf("player created id=%d", player.ID)
	} else if err != nil {
		log.Fatalf("get player failed: %v", err)
	} else {
		log.Printf("player already exists id=%d", player.ID)
	}

	// login proof as a client would send it
	ts := time.Now().Unix()
	sig := ed25519.Sign(priv, []byte(service.LoginMessagePrefix+strconv.FormatInt(ts, 10)))

	service.InitJWT(secret)
	token, err := service.GenerateJWT(player.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Printf("player_id=%d\n", player.ID)
	fmt.Printf("public_key=%s\n", pubHex)
	fmt.Printf("private_key=%s\n", hex.EncodeToString(priv))
	fmt.Printf("timestamp=%d\n", ts)
	fmt.Printf("signature=%s\n", hex.EncodeToString(sig))
	fmt.Printf("token=%s\n", token)
}
