package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trade-escrow/backend/internal/assets"
	"github.com/trade-escrow/backend/internal/config"
	"github.com/trade-escrow/backend/internal/escrow"
	"github.com/trade-escrow/backend/internal/http/dto"
	"github.com/trade-escrow/backend/internal/middleware"
	"go.uber.org/zap"
)

type LedgerHandler struct {
	ledger    *escrow.Ledger
	transfers assets.TransferService
	faucet    *assets.PostgresLedger // nil unless the faucet is enabled
	cfg       *config.Config
	log       *zap.Logger
}

func NewLedgerHandler(ledger *escrow.Ledger, transfers assets.TransferService, faucet *assets.PostgresLedger, cfg *config.Config, log *zap.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, transfers: transfers, faucet: faucet, cfg: cfg, log: log}
}

// GetFees reports the accumulated fee balance and the custodied total.
func (h *LedgerHandler) GetFees(c *fiber.Ctx) error {
	custody, err := h.transfers.CustodyBalance(c.Context())
	if err != nil {
		h.log.Error("failed to read custody balance", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.FeeBalanceResponse{
		FeeBalance:     h.ledger.FeeBalance(),
		CustodyBalance: custody,
	}})
}

// WithdrawFees moves the whole fee balance to the requested party. The
// ledger itself enforces the owner check.
func (h *LedgerHandler) WithdrawFees(c *fiber.Ctx) error {
	var req dto.WithdrawFeesRequest
	_ = c.BodyParser(&req)

	caller := middleware.GetPartyID(c)
	to := caller
	if req.To != "" {
		parsed, err := uuid.Parse(req.To)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid recipient id"})
		}
		to = parsed
	}

	amount, err := h.ledger.WithdrawFees(c.Context(), caller, to)
	if err != nil {
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.WithdrawFeesResponse{To: to.String(), Amount: amount}})
}

func (h *LedgerHandler) GetMyBalance(c *fiber.Ctx) error {
	partyID := middleware.GetPartyID(c)
	balance, err := h.transfers.BalanceOf(c.Context(), partyID)
	if err != nil {
		h.log.Error("failed to read balance", zap.String("party_id", partyID.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.BalanceResponse{PartyID: partyID.String(), Balance: balance}})
}

// Mint is the dev faucet. Disabled unless FAUCET_ENABLED is set.
func (h *LedgerHandler) Mint(c *fiber.Ctx) error {
	if !h.cfg.FaucetEnabled || h.faucet == nil {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "faucet is disabled"})
	}

	var req dto.MintRequest
	if err := c.BodyParser(&req); err != nil || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "amount must be positive"})
	}

	partyID := middleware.GetPartyID(c)
	if err := h.faucet.Mint(c.Context(), partyID, req.Amount); err != nil {
		h.log.Error("mint failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}
