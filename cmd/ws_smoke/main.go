package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"

	"battleship_backend/internal/battleship"
	"battleship_backend/internal/db"
	"battleship_backend/internal/domain"
	"battleship_backend/internal/repository"
	"battleship_backend/internal/service"
)

// End-to-end smoke against a running server: seats two players, plays a
// full game over the HTTP API (create, join, fire/resolve to 17 hits,
// both reveals) while both websocket feeds listen and print every event.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()
	pool := db.Connect(ctx, dsn)
	defer pool.Close()

	players := repository.NewPlayerRepository(pool)

	playerA := upsertPlayer(ctx, players, repeatHex("a1"), "smokeA")
	playerB := upsertPlayer(ctx, players, repeatHex("b2"), "smokeB")

	service.InitJWT(jwtSecret)
	tokenA, err := service.GenerateJWT(playerA.ID)
	if err != nil {
		log.Fatalf("gen token A: %v", err)
	}
	tokenB, err := service.GenerateJWT(playerB.ID)
	if err != nil {
		log.Fatalf("gen token B: %v", err)
	}

	// both smoke players use the same placement, different salts
	board := smokeBoard()
	var saltA, saltB battleship.Salt
	for i := range saltA {
		saltA[i] = byte(i)
		saltB[i] = byte(255 - i)
	}
	commitA := battleship.ComputeCommitment(board, saltA)
	commitB := battleship.ComputeCommitment(board, saltB)

	client := &http.Client{Timeout: 5 * time.Second}
	// 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := fmt.Sprintf("http://127.0.0.1:%s/api/v1", port)

	created, err := call(client, "POST", base+"/sessions", tokenA, map[string]any{
		"commitment": hex.EncodeToString(commitA[:]),
	})
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	sessionID, _ := created["id"].(string)
	if sessionID == "" {
		log.Fatalf("no session id in response: %v", created)
	}
	log.Printf("session %s created", sessionID)

	// subscribe both feeds before any moves
	dialer := websocket.DefaultDialer
	connA := dialFeed(dialer, port, tokenA, sessionID, "A")
	defer connA.Close()
	connB := dialFeed(dialer, port, tokenB, sessionID, "B")
	defer connB.Close()

	go listen(connA, "A")
	go listen(connB, "B")

	if _, err := call(client, "POST", base+"/sessions/"+sessionID+"/join", tokenB, map[string]any{
		"commitment": hex.EncodeToString(commitB[:]),
	}); err != nil {
		log.Fatalf("join: %v", err)
	}

	shipCells, waterCells := splitCells(board)

	// A pounds B's fleet; B answers each round with a throwaway miss
	for i := 0; i < battleship.FleetCells; i++ {
		x, y := shipCells[i]%battleship.GridSize, shipCells[i]/battleship.GridSize
		if _, err := call(client, "POST", base+"/sessions/"+sessionID+"/fire", tokenA, map[string]any{"x": x, "y": y}); err != nil {
			log.Fatalf("fire %d: %v", i, err)
		}
		out, err := call(client, "POST", base+"/sessions/"+sessionID+"/resolve", tokenB, map[string]any{"was_hit": true})
		if err != nil {
			log.Fatalf("resolve %d: %v", i, err)
		}
		if out["phase"] == string(battleship.PhaseFinished) {
			log.Printf("game finished after %d hits, winner %v", i+1, out["winner_id"])
			break
		}

		wx, wy := waterCells[i]%battleship.GridSize, waterCells[i]/battleship.GridSize
		if _, err := call(client, "POST", base+"/sessions/"+sessionID+"/fire", tokenB, map[string]any{"x": wx, "y": wy}); err != nil {
			log.Fatalf("counter fire %d: %v", i, err)
		}
		if _, err := call(client, "POST", base+"/sessions/"+sessionID+"/resolve", tokenA, map[string]any{"was_hit": false}); err != nil {
			log.Fatalf("counter resolve %d: %v", i, err)
		}
	}

	// both reveal; the server checks hashes, fleet size and consistency
	reveal := map[string]any{"board": boardInts(board), "salt": hex.EncodeToString(saltA[:])}
	if _, err := call(client, "POST", base+"/sessions/"+sessionID+"/reveal", tokenA, reveal); err != nil {
		log.Fatalf("reveal A: %v", err)
	}
	reveal["salt"] = hex.EncodeToString(saltB[:])
	if _, err := call(client, "POST", base+"/sessions/"+sessionID+"/reveal", tokenB, reveal); err != nil {
		log.Fatalf("reveal B: %v", err)
	}

	final, err := call(client, "GET", base+"/sessions/"+sessionID, "", nil)
	if err != nil {
		log.Fatalf("final snapshot: %v", err)
	}
	log.Printf("final phase=%v revealed_a=%v revealed_b=%v", final["phase"], final["revealed_a"], final["revealed_b"])

	// give the feeds a moment to drain
	time.Sleep(500 * time.Millisecond)
	log.Println("smoke test finished")
}

func upsertPlayer(ctx context.Context, repo *repository.PlayerRepository, publicKey, username string) *domain.Player {
	player, err := repo.GetByPublicKey(ctx, publicKey)
	if errors.Is(err, pgx.ErrNoRows) {
		player = &domain.Player{PublicKey: publicKey, Username: username}
		if err := repo.Create(ctx, player); err != nil {
			log.Fatalf("create %s: %v", username, err)
		}
	} else if err != nil {
		log.Fatalf("get %s: %v", username, err)
	}
	return player
}

func dialFeed(dialer *websocket.Dialer, port, token, sessionID, name string) *websocket.Conn {
	url := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s&session=%s", port, token, sessionID)
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", name, err)
	}
	return conn
}

func listen(conn *websocket.Conn, name string) {
	for {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		log.Printf("%s event: %s", name, msg)
	}
}

func call(client *http.Client, method, url, token string, body any) (map[string]any, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	if res.StatusCode != http.StatusOK {
		return out, fmt.Errorf("%s %s: status %d: %v", method, url, res.StatusCode, out)
	}
	return out, nil
}

// smokeBoard lays the classic fleet in the top rows: 5,4,3,3,2.
func smokeBoard() battleship.Board {
	var b battleship.Board
	runs := []struct{ y, length int }{{0, 5}, {1, 4}, {2, 3}, {3, 3}, {4, 2}}
	for _, r := range runs {
		for x := 0; x < r.length; x++ {
			b[x+r.y*battleship.GridSize] = battleship.CellShip
		}
	}
	return b
}

func splitCells(b battleship.Board) (ships, water []int) {
	for i, c := range b {
		if c == battleship.CellShip {
			ships = append(ships, i)
		} else {
			water = append(water, i)
		}
	}
	return ships, water
}

func boardInts(b battleship.Board) []int {
	out := make([]int, len(b))
	for i, c := range b {
		out[i] = int(c)
	}
	return out
}

func repeatHex(pair string) string {
	var buf bytes.Buffer
	for i := 0; i < 32; i++ {
		buf.WriteString(pair)
	}
	return buf.String()
}
