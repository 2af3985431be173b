package db

import (
	"context"
	"os"
	"strconv"
	"time"

	"battleship_backend/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool against dsn and verifies it with a bounded ping.
// Fire/resolve transactions hold a FOR UPDATE lock for their whole span, so
// the pool ceiling (DB_MAX_CONNS, or pgx's CPU-based default) caps how many
// game actions can be in flight at once.
func Connect(ctx context.Context, dsn string) *pgxpool.Pool {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Fatal("invalid database dsn", "error", err)
	}

	if raw := os.Getenv("DB_MAX_CONNS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			logger.Fatal("invalid DB_MAX_CONNS", "value", raw)
		}
		poolCfg.MaxConns = int32(n)
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("failed to create connection pool", "error", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected", "max_conns", poolCfg.MaxConns)
	return pool
}
