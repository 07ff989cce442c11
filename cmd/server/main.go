package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alphatracker/backend/internal/api"
	"github.com/alphatracker/backend/internal/auth"
	"github.com/alphatracker/backend/internal/config"
	"github.com/alphatracker/backend/internal/db"
	"github.com/alphatracker/backend/internal/external"
	"github.com/alphatracker/backend/internal/logger"
	"github.com/alphatracker/backend/internal/notifications"
)

const banner = `
╔══════════════════════════════════════╗
║        AlphaTracker API v1.0         ║
║        personal trade journal        ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Database
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		pool.Close()
		log.Info("connection pool closed")
	}()

	storeTime, err := db.TestConnection(pool)
	if err != nil {
		log.Fatal("database test query failed", zap.Error(err))
	}
	log.Info("database connected", zap.Time("store_time", storeTime))

	// Collaborators
	quotes := external.NewFinnhubClient(cfg.FinnhubKey, cfg.QuoteRateLimit, cfg.QuoteRateBurst, log)
	notify := notifications.NewSender(cfg.WebhookURL, cfg.AppName, log)

	var verifier *auth.Verifier
	if cfg.IdentityJWTSecret != "" {
		verifier = auth.NewVerifier(cfg.IdentityJWTSecret)
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(pool, quotes, notify, verifier, cfg.Port, cfg.CORSAllowOrigin, log)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	log.Info("ready", zap.Int("port", cfg.Port))

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	log.Info("server closed")
}
