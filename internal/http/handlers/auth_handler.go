package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/trade-escrow/backend/internal/auth"
	"github.com/trade-escrow/backend/internal/config"
	"github.com/trade-escrow/backend/internal/http/dto"
	"github.com/trade-escrow/backend/internal/repositories"
	"go.uber.org/zap"
)

type AuthHandler struct {
	partyRepo *repositories.PartyRepo
	nonces    *auth.NonceStore
	cfg       *config.Config
	log       *zap.Logger
}

func NewAuthHandler(partyRepo *repositories.PartyRepo, nonces *auth.NonceStore, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{partyRepo: partyRepo, nonces: nonces, cfg: cfg, log: log}
}

// Challenge issues a single-use nonce. The client signs
// sha256("trade-escrow/auth/v1/" + nonce) with its ed25519 key and sends
// the result to Verify.
func (h *AuthHandler) Challenge(c *fiber.Ctx) error {
	nonce, err := h.nonces.Issue(c.Context())
	if err != nil {
		h.log.Error("failed to issue auth nonce", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.ChallengeResponse{
		Nonce:     nonce,
		ExpiresIn: int64(h.nonces.TTL().Seconds()),
	})
}

// Verify consumes the nonce, checks the key proof, registers the party on
// first login, and returns a JWT carrying the party id.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.PublicKey == "" || req.Nonce == "" || req.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "public_key, nonce and signature are required"})
	}

	if err := h.nonces.Consume(c.Context(), req.Nonce); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	if err := auth.VerifyKeyProof(req.PublicKey, req.Nonce, req.Signature); err != nil {
		h.log.Debug("key proof verification failed", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	party, err := h.partyRepo.UpsertByPublicKey(c.Context(), req.PublicKey)
	if err != nil {
		h.log.Error("failed to upsert party", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, party.ID, party.PublicKey, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to sign token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.AuthResponse{Token: token, PartyID: party.ID.String()})
}
