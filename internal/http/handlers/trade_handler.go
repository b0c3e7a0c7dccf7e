package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/trade-escrow/backend/internal/assets"
	"github.com/trade-escrow/backend/internal/escrow"
	"github.com/trade-escrow/backend/internal/http/dto"
	"github.com/trade-escrow/backend/internal/middleware"
	"github.com/trade-escrow/backend/internal/repositories"
	"go.uber.org/zap"
)

type TradeHandler struct {
	ledger    *escrow.Ledger
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewTradeHandler(ledger *escrow.Ledger, auditRepo *repositories.AuditRepo, log *zap.Logger) *TradeHandler {
	return &TradeHandler{ledger: ledger, auditRepo: auditRepo, log: log}
}

// statusFromError maps the ledger's error taxonomy onto HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, escrow.ErrTradeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, escrow.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, escrow.ErrInvalidStatus), errors.Is(err, escrow.ErrDeadlineNotReached):
		return fiber.StatusConflict
	case errors.Is(err, assets.ErrInsufficientFunds):
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusBadRequest
	}
}

func parseTradeID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func (h *TradeHandler) CreateTrade(c *fiber.Ctx) error {
	var req dto.CreateTradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	seller := middleware.GetPartyID(c)
	trade, err := h.ledger.CreateTrade(c.Context(), seller, req.Amount)
	if err != nil {
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: trade})
}

func (h *TradeHandler) GetTrade(c *fiber.Ctx) error {
	id, err := parseTradeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid trade id"})
	}

	trade, err := h.ledger.GetTrade(id)
	if err != nil {
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: trade})
}

func (h *TradeHandler) ListTrades(c *fiber.Ctx) error {
	filter := escrow.TradeFilter{Limit: 20}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			filter.Limit = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}

	// role=any lists every trade; default is the caller's own.
	if c.Query("role") != "any" {
		partyID := middleware.GetPartyID(c)
		filter.Party = &partyID
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: h.ledger.ListTrades(filter)})
}

func (h *TradeHandler) GetTradeEvents(c *fiber.Ctx) error {
	id, err := parseTradeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid trade id"})
	}

	logs, err := h.auditRepo.GetByEntity(c.Context(), "trade", id, 100, 0)
	if err != nil {
		h.log.Error("failed to load trade events", zap.Int64("trade_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}

func (h *TradeHandler) PayTrade(c *fiber.Ctx) error {
	id, err := parseTradeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid trade id"})
	}

	buyer := middleware.GetPartyID(c)
	if err := h.ledger.PayTrade(c.Context(), id, buyer); err != nil {
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TradeHandler) MarkAsSent(c *fiber.Ctx) error {
	id, err := parseTradeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid trade id"})
	}

	caller := middleware.GetPartyID(c)
	if err := h.ledger.MarkAsSent(c.Context(), id, caller); err != nil {
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TradeHandler) DisputeTrade(c *fiber.Ctx) error {
	id, err := parseTradeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid trade id"})
	}

	caller := middleware.GetPartyID(c)
	if err := h.ledger.DisputeTrade(c.Context(), id, caller); err != nil {
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TradeHandler) ConfirmReception(c *fiber.Ctx) error {
	id, err := parseTradeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid trade id"})
	}

	caller := middleware.GetPartyID(c)
	if err := h.ledger.ConfirmReception(c.Context(), id, caller); err != nil {
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TradeHandler) ResolveDispute(c *fiber.Ctx) error {
	id, err := parseTradeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid trade id"})
	}

	var req dto.ResolveDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	caller := middleware.GetPartyID(c)
	if err := h.ledger.ResolveDispute(c.Context(), id, caller, req.FavorBuyer); err != nil {
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TradeHandler) ExpireTrade(c *fiber.Ctx) error {
	id, err := parseTradeID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid trade id"})
	}

	caller := middleware.GetPartyID(c)
	if err := h.ledger.ExpireTrade(c.Context(), id, caller); err != nil {
		return c.Status(statusFromError(err)).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}
