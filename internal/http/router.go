package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/trade-escrow/backend/internal/config"
	"github.com/trade-escrow/backend/internal/http/handlers"
	"github.com/trade-escrow/backend/internal/middleware"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	tradeHandler *handlers.TradeHandler,
	ledgerHandler *handlers.LedgerHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/challenge", authHandler.Challenge)
	api.Post("/auth/verify", authHandler.Verify)

	// Rate-limited endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Trades
	protected.Post("/trades", tradeHandler.CreateTrade)
	protected.Get("/trades", tradeHandler.ListTrades)
	protected.Get("/trades/:id", tradeHandler.GetTrade)
	protected.Get("/trades/:id/events", tradeHandler.GetTradeEvents)
	protected.Post("/trades/:id/pay", tradeHandler.PayTrade)
	protected.Post("/trades/:id/sent", tradeHandler.MarkAsSent)
	protected.Post("/trades/:id/dispute", tradeHandler.DisputeTrade)
	protected.Post("/trades/:id/confirm", tradeHandler.ConfirmReception)
	protected.Post("/trades/:id/resolve", tradeHandler.ResolveDispute)
	protected.Post("/trades/:id/expire", tradeHandler.ExpireTrade)

	// Fees (owner)
	protected.Get("/fees", ledgerHandler.GetFees)
	protected.Post("/fees/withdraw", ledgerHandler.WithdrawFees)

	// Accounts
	protected.Get("/accounts/me/balance", ledgerHandler.GetMyBalance)
	protected.Post("/accounts/me/mint", ledgerHandler.Mint)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
