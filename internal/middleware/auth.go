package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trade-escrow/backend/internal/auth"
	"github.com/trade-escrow/backend/internal/config"
	"go.uber.org/zap"
)

const (
	CtxPartyID   = "party_id"
	CtxPublicKey = "public_key"
)

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxPartyID, claims.PartyID)
		c.Locals(CtxPublicKey, claims.PublicKey)

		return c.Next()
	}
}

func GetPartyID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxPartyID).(uuid.UUID)
	return id
}

func GetPublicKey(c *fiber.Ctx) string {
	pk, _ := c.Locals(CtxPublicKey).(string)
	return pk
}
