package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/trade-escrow/backend/internal/assets"
	"github.com/trade-escrow/backend/internal/auth"
	"github.com/trade-escrow/backend/internal/config"
	"github.com/trade-escrow/backend/internal/db"
	"github.com/trade-escrow/backend/internal/escrow"
	"github.com/trade-escrow/backend/internal/events"
	apphttp "github.com/trade-escrow/backend/internal/http"
	"github.com/trade-escrow/backend/internal/http/handlers"
	"github.com/trade-escrow/backend/internal/repositories"
	"github.com/trade-escrow/backend/internal/sweeper"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	tradeRepo := repositories.NewTradeRepo(pool)
	partyRepo := repositories.NewPartyRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Asset accounts and the escrow ledger
	transfers := assets.NewPostgresLedger(pool, cfg.CustodyAccountID)
	clock := escrow.SystemClock{}
	ledger := escrow.NewLedger(cfg.OwnerPartyID, cfg.EscrowWindow, transfers, clock, tradeRepo, auditRepo, publisher, log)
	if err := ledger.Restore(ctx); err != nil {
		log.Fatal("failed to restore ledger state", zap.Error(err))
	}

	// Handlers
	nonces := auth.NewNonceStore(rdb, cfg.AuthChallengeTTL)
	authHandler := handlers.NewAuthHandler(partyRepo, nonces, cfg, log)
	tradeHandler := handlers.NewTradeHandler(ledger, auditRepo, log)
	var faucet *assets.PostgresLedger
	if cfg.FaucetEnabled {
		faucet = transfers
	}
	ledgerHandler := handlers.NewLedgerHandler(ledger, transfers, faucet, cfg, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Deadline sweeper runs in-process: the trade table is owned by
	// this ledger instance, so expiry has to happen here too.
	sw := sweeper.New(ledger, clock, cfg.EscrowWindow, cfg.SweepInterval, cfg.OwnerPartyID, log)
	go sw.Run(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, tradeHandler, ledgerHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
