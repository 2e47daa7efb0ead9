// Package main is the entry point for the Malayalees US events API server.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"malayalees/src/app/server"
	"malayalees/src/core/ports"
	"malayalees/src/infra/auth"
	"malayalees/src/infra/backend"
	"malayalees/src/infra/cache"
	"malayalees/src/infra/config"
	"malayalees/src/infra/db"
	"malayalees/src/infra/logger"
	"malayalees/src/infra/payment"
	"malayalees/src/infra/repo"
	"malayalees/src/infra/whatsapp"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from .env and environment variables
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
		"tenant_id", cfg.Tenant.DefaultID,
	)

	ctx := context.Background()

	// Initialize database connection
	pg, err := db.New(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		return err
	}

	// Initialize repositories
	comments := repo.NewPostgresCommentRepository(pg, log)
	messages := repo.NewPostgresMessageLogRepository(pg, log)

	store, closeCache, err := newCache(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeCache()

	api := backend.New(cfg.Backend, logger.WithComponent(log, "backend"))

	deps := server.Deps{
		Backend:  api,
		Tokens:   api.Tokens(),
		Comments: comments,
		Messages: messages,
		Cache:    store,
		Sender:   whatsapp.NewTwilioClient(cfg.Twilio, logger.WithComponent(log, "twilio")),
		Health: map[string]ports.ExternalService{
			"database": pg,
			"comments": comments,
			"cache":    store,
			"backend":  api,
		},
	}

	if cfg.Stripe.Enabled() {
		gw := payment.NewStripeGateway(cfg.Stripe, logger.WithComponent(log, "stripe"))
		deps.Gateway = gw
		log.Info("payment gateway configured", "provider", gw.Name())
	} else {
		log.Warn("stripe is not configured, paid checkout is disabled")
	}

	if cfg.Auth.JWKSURL != "" {
		deps.Auth = auth.NewVerifier(cfg.Auth, logger.WithComponent(log, "auth"))
	} else {
		log.Warn("auth is not configured, all requests are anonymous")
	}

	// Create and run HTTP server
	srv, err := server.New(cfg, log, deps)
	if err != nil {
		return err
	}

	// Run blocks until shutdown signal is received
	return srv.Run()
}

// newCache picks Redis when an address is configured and an in-process
// cache otherwise. A zero TTL turns caching off.
func newCache(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (ports.Cache, func(), error) {
	if cfg.TTL <= 0 {
		log.Info("response cache disabled")
		return cache.Noop{}, func() {}, nil
	}
	if cfg.Addr == "" {
		log.Info("using in-process response cache", "ttl", cfg.TTL)
		return cache.NewMemory(), func() {}, nil
	}
	rc, err := cache.NewRedis(ctx, cfg, logger.WithComponent(log, "redis"))
	if err != nil {
		return nil, nil, err
	}
	return rc, func() { _ = rc.Close() }, nil
}
