package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/alphatracker/backend/internal/config"
	"github.com/alphatracker/backend/internal/db"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS trades (
		trade_id    BIGSERIAL PRIMARY KEY,
		ticker      TEXT NOT NULL,
		entry_price NUMERIC(12,2) NOT NULL,
		shares      INTEGER NOT NULL,
		trade_type  TEXT NOT NULL DEFAULT 'LONG',
		setup       TEXT NOT NULL DEFAULT '',
		user_id     TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_user_created
		ON trades (user_id, created_at DESC)`,
}

// Bootstraps the trades table and, when the journal is empty, inserts a few
// demo rows for local development.
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
	}
	fmt.Println("Schema ready")

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM trades").Scan(&count); err != nil {
		log.Fatalf("Failed to count trades: %v", err)
	}
	if count > 0 {
		fmt.Printf("Journal already has %d trades. No need to seed.\n", count)
		os.Exit(0)
	}

	samples := []struct {
		ticker    string
		price     string
		shares    int
		tradeType string
		setup     string
		ageDays   int
	}{
		{"NVDA", "150.00", 10, "LONG", "Breakout", 3},
		{"AAPL", "189.50", 25, "LONG", "Reversal", 2},
		{"TSLA", "242.10", 5, "SHORT", "Gap Up", 1},
	}

	for _, s := range samples {
		_, err := pool.Exec(ctx,
			`INSERT INTO trades (ticker, entry_price, shares, trade_type, setup, user_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, 'demo', NOW() - ($6 || ' day')::interval)`,
			s.ticker, s.price, s.shares, s.tradeType, s.setup, s.ageDays,
		)
		if err != nil {
			log.Fatalf("Failed to seed %s trade: %v", s.ticker, err)
		}
	}

	fmt.Printf("Seeded %d demo trades for user 'demo'\n", len(samples))
}
