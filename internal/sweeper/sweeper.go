package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/trade-escrow/backend/internal/escrow"
	"github.com/trade-escrow/backend/internal/models"
	"go.uber.org/zap"
)

// Sweeper periodically resolves trades whose stage deadline has
// passed. Resolution is lazy: a party can always force it first via
// the expire endpoint; the sweeper just guarantees eventual progress.
type Sweeper struct {
	ledger   *escrow.Ledger
	clock    escrow.Clock
	window   time.Duration
	interval time.Duration
	actor    uuid.UUID
	log      *zap.Logger
}

func New(ledger *escrow.Ledger, clock escrow.Clock, window, interval time.Duration, actor uuid.UUID, log *zap.Logger) *Sweeper {
	return &Sweeper{
		ledger:   ledger,
		clock:    clock,
		window:   window,
		interval: interval,
		actor:    actor,
		log:      log,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := s.clock.Now()
	trades := s.ledger.ListTrades(escrow.TradeFilter{Active: true})

	for _, t := range trades {
		if !s.due(&t, now) {
			continue
		}

		err := s.ledger.ExpireTrade(ctx, t.ID, s.actor)
		if err != nil {
			// Another caller may have resolved the trade between the
			// list and the expire call.
			if errors.Is(err, escrow.ErrDeadlineNotReached) || errors.Is(err, escrow.ErrInvalidStatus) {
				continue
			}
			s.log.Error("failed to expire trade",
				zap.Int64("trade_id", t.ID),
				zap.String("status", t.Status),
				zap.Error(err),
			)
			continue
		}

		s.log.Info("expired timed out trade",
			zap.Int64("trade_id", t.ID),
			zap.String("status", t.Status),
		)
	}
}

// due reports whether the trade's stage deadline has passed. The
// clock runs from the timestamp of the stage the trade is in; a
// dispute keeps running from the moment the goods were marked sent.
func (s *Sweeper) due(t *models.Trade, now time.Time) bool {
	switch t.Status {
	case models.TradeStatusCreated:
		return now.Sub(t.CreatedAt) >= s.window
	case models.TradeStatusPaid:
		return t.PaidAt != nil && now.Sub(*t.PaidAt) >= s.window
	case models.TradeStatusSent, models.TradeStatusDispute:
		return t.SentAt != nil && now.Sub(*t.SentAt) >= s.window
	default:
		return false
	}
}
