// Package escrow implements the trade lifecycle state machine: who may
// move custodied funds, when, and how much. All mutating operations run
// one at a time under a single mutex, so every transition commits its
// status change and its transfer together or not at all.
package escrow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trade-escrow/backend/internal/assets"
	"github.com/trade-escrow/backend/internal/events"
	"github.com/trade-escrow/backend/internal/models"
	"go.uber.org/zap"
)

// DefaultWindow is the escrow timeout measured from the status-entry
// timestamp; expireTrade is a no-op before it elapses.
const DefaultWindow = 12 * time.Hour

// custodyParty labels the custodial side in emitted transfer records.
const custodyParty = "custody"

// TradeStore mirrors committed mutations so the ledger can restore its
// table, id counter and fee balance after a restart. The in-memory map
// stays authoritative; writes are best-effort.
type TradeStore interface {
	UpsertTrade(ctx context.Context, t *models.Trade) error
	ListTrades(ctx context.Context) ([]models.Trade, error)
	SaveState(ctx context.Context, nextTradeID, feeBalance int64) error
	LoadState(ctx context.Context) (nextTradeID, feeBalance int64, err error)
}

// AuditSink records every operation as a permanent audit trail.
type AuditSink interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// Ledger owns the trade table, the accumulated fee balance and all
// admission/transition logic. Funds move only through the injected
// TransferService; time is read only through the injected Clock.
type Ledger struct {
	mu         sync.Mutex
	trades     map[int64]*models.Trade
	nextID     int64
	feeBalance int64

	owner     uuid.UUID
	window    time.Duration
	transfers assets.TransferService
	clock     Clock
	store     TradeStore
	audit     AuditSink
	publisher events.Publisher
	log       *zap.Logger
}

func NewLedger(
	owner uuid.UUID,
	window time.Duration,
	transfers assets.TransferService,
	clock Clock,
	store TradeStore,
	audit AuditSink,
	publisher events.Publisher,
	log *zap.Logger,
) *Ledger {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Ledger{
		trades:    make(map[int64]*models.Trade),
		nextID:    1,
		owner:     owner,
		window:    window,
		transfers: transfers,
		clock:     clock,
		store:     store,
		audit:     audit,
		publisher: publisher,
		log:       log,
	}
}

// Restore reloads the trade table and ledger-wide counters from the store.
// Called once at startup, before the ledger serves operations.
func (l *Ledger) Restore(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	trades, err := l.store.ListTrades(ctx)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	for i := range trades {
		t := trades[i]
		l.trades[t.ID] = &t
	}

	nextID, feeBalance, err := l.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load ledger state: %w", err)
	}
	l.nextID = nextID
	l.feeBalance = feeBalance

	l.log.Info("ledger restored",
		zap.Int("trades", len(l.trades)),
		zap.Int64("next_trade_id", l.nextID),
		zap.Int64("fee_balance", l.feeBalance),
	)
	return nil
}

// CreateTrade admits a new trade. The caller becomes the seller.
func (l *Ledger) CreateTrade(ctx context.Context, seller uuid.UUID, amount int64) (*models.Trade, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	t := &models.Trade{
		ID:        l.nextID,
		Seller:    seller,
		Amount:    amount,
		Status:    models.TradeStatusCreated,
		CreatedAt: l.clock.Now(),
	}
	l.nextID++
	l.trades[t.ID] = t
	l.persistLocked(ctx, t)

	_ = l.audit.Log(ctx, models.AuditLog{
		ActorPartyID: &seller,
		ActorType:    "party",
		Action:       "trade_created",
		EntityType:   "trade",
		EntityID:     &t.ID,
		Meta:         map[string]any{"amount": amount},
	})
	_ = l.publisher.Publish(ctx, events.TradeStream, events.Event{
		Type: events.EventTradeCreated,
		Payload: map[string]any{
			"trade_id": t.ID,
			"seller":   seller.String(),
			"amount":   amount,
		},
	})

	l.log.Info("trade created",
		zap.Int64("trade_id", t.ID),
		zap.String("seller", seller.String()),
		zap.Int64("amount", amount),
	)
	return cloneTrade(t), nil
}

// PayTrade debits the caller amount+fee into custody and records them as
// the buyer. The buyer slot is written exactly once: only a trade still in
// created can be paid, and paying moves it out of created.
func (l *Ledger) PayTrade(ctx context.Context, id int64, buyer uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.getLocked(id)
	if err != nil {
		return err
	}
	if t.Status != models.TradeStatusCreated {
		return fmt.Errorf("%w: pay requires %s, trade %d is %s", ErrInvalidStatus, models.TradeStatusCreated, id, t.Status)
	}

	obligation := BuyerObligation(t.Amount)
	if err := l.transfers.Debit(ctx, buyer, obligation); err != nil {
		return fmt.Errorf("debit buyer: %w", err)
	}

	now := l.clock.Now()
	t.Buyer = &buyer
	t.PaidAt = &now
	if err := l.transitionLocked(ctx, t, models.TradeStatusPaid, &buyer, "party"); err != nil {
		return err
	}
	l.publishTransfer(ctx, t.ID, buyer.String(), custodyParty, obligation)
	return nil
}

// MarkAsSent records delivery. Seller only, paid trades only.
func (l *Ledger) MarkAsSent(ctx context.Context, id int64, caller uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.getLocked(id)
	if err != nil {
		return err
	}
	if caller != t.Seller {
		return fmt.Errorf("%w: only the seller can mark trade %d as sent", ErrNotAuthorized, id)
	}
	if t.Status != models.TradeStatusPaid {
		return fmt.Errorf("%w: mark-as-sent requires %s, trade %d is %s", ErrInvalidStatus, models.TradeStatusPaid, id, t.Status)
	}

	now := l.clock.Now()
	t.SentAt = &now
	return l.transitionLocked(ctx, t, models.TradeStatusSent, &caller, "party")
}

// DisputeTrade flags a sent trade. Buyer only, single-shot: a trade
// already in dispute cannot be disputed again.
func (l *Ledger) DisputeTrade(ctx context.Context, id int64, caller uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.getLocked(id)
	if err != nil {
		return err
	}
	if t.Buyer == nil || caller != *t.Buyer {
		return fmt.Errorf("%w: only the buyer can dispute trade %d", ErrNotAuthorized, id)
	}
	if t.Status != models.TradeStatusSent {
		return fmt.Errorf("%w: dispute requires %s, trade %d is %s", ErrInvalidStatus, models.TradeStatusSent, id, t.Status)
	}
	return l.transitionLocked(ctx, t, models.TradeStatusDispute, &caller, "party")
}

// ConfirmReception settles the trade to the seller. Buyer only, from sent
// or dispute — an open dispute does not block the buyer's own confirmation.
func (l *Ledger) ConfirmReception(ctx context.Context, id int64, caller uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.getLocked(id)
	if err != nil {
		return err
	}
	if t.Buyer == nil || caller != *t.Buyer {
		return fmt.Errorf("%w: only the buyer can confirm trade %d", ErrNotAuthorized, id)
	}
	if t.Status != models.TradeStatusSent && t.Status != models.TradeStatusDispute {
		return fmt.Errorf("%w: confirm requires %s or %s, trade %d is %s",
			ErrInvalidStatus, models.TradeStatusSent, models.TradeStatusDispute, id, t.Status)
	}
	return l.settleLocked(ctx, t, &caller, "party")
}

// ResolveDispute is the arbiter's verdict on a disputed trade: refund the
// buyer in full (no fee taken) or settle to the seller as a confirmation
// would have.
func (l *Ledger) ResolveDispute(ctx context.Context, id int64, caller uuid.UUID, favorBuyer bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.getLocked(id)
	if err != nil {
		return err
	}
	if caller != l.owner {
		return fmt.Errorf("%w: only the ledger owner can resolve disputes", ErrNotAuthorized)
	}
	if t.Status != models.TradeStatusDispute {
		return fmt.Errorf("%w: resolve requires %s, trade %d is %s", ErrInvalidStatus, models.TradeStatusDispute, id, t.Status)
	}

	if favorBuyer {
		return l.refundLocked(ctx, t, &caller, "owner")
	}
	return l.settleLocked(ctx, t, &caller, "owner")
}

// ExpireTrade lazily re-evaluates what should have happened by now. Any
// identity may invoke it; the outcome depends only on the stored
// timestamps and the clock:
//
//	created  + window elapsed -> expired, no funds ever moved
//	paid     + window elapsed -> buyer refunded in full, no fee
//	sent     + window elapsed -> implicit confirmation, settle to seller
//	dispute  + window elapsed -> same as sent; dispute does not pause the clock
func (l *Ledger) ExpireTrade(ctx context.Context, id int64, caller uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.getLocked(id)
	if err != nil {
		return err
	}

	now := l.clock.Now()
	switch t.Status {
	case models.TradeStatusCreated:
		if now.Sub(t.CreatedAt) < l.window {
			return fmt.Errorf("%w: trade %d was created %s ago", ErrDeadlineNotReached, id, now.Sub(t.CreatedAt))
		}
		return l.transitionLocked(ctx, t, models.TradeStatusExpired, &caller, "party")

	case models.TradeStatusPaid:
		if now.Sub(*t.PaidAt) < l.window {
			return fmt.Errorf("%w: trade %d was paid %s ago", ErrDeadlineNotReached, id, now.Sub(*t.PaidAt))
		}
		return l.refundLocked(ctx, t, &caller, "party")

	case models.TradeStatusSent, models.TradeStatusDispute:
		if now.Sub(*t.SentAt) < l.window {
			return fmt.Errorf("%w: trade %d was sent %s ago", ErrDeadlineNotReached, id, now.Sub(*t.SentAt))
		}
		return l.settleLocked(ctx, t, &caller, "party")

	default:
		return fmt.Errorf("%w: trade %d is %s and cannot expire", ErrInvalidStatus, id, t.Status)
	}
}

// WithdrawFees moves the entire accumulated fee balance to the given
// party and zeroes it. Owner only. A zero balance is a no-op, not an
// error. Returns the amount withdrawn.
func (l *Ledger) WithdrawFees(ctx context.Context, caller, to uuid.UUID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return 0, fmt.Errorf("%w: only the ledger owner can withdraw fees", ErrNotAuthorized)
	}
	if l.feeBalance == 0 {
		return 0, nil
	}

	amount := l.feeBalance
	if err := l.transfers.Credit(ctx, to, amount); err != nil {
		return 0, fmt.Errorf("credit fee recipient: %w", err)
	}
	l.feeBalance = 0
	_ = l.store.SaveState(ctx, l.nextID, l.feeBalance)

	_ = l.audit.Log(ctx, models.AuditLog{
		ActorPartyID: &caller,
		ActorType:    "owner",
		Action:       "fees_withdrawn",
		EntityType:   "ledger",
		Meta:         map[string]any{"to": to.String(), "amount": amount},
	})
	_ = l.publisher.Publish(ctx, events.TradeStream, events.Event{
		Type: events.EventFeesWithdrawn,
		Payload: map[string]any{
			"to":     to.String(),
			"amount": amount,
		},
	})

	l.log.Info("fees withdrawn", zap.String("to", to.String()), zap.Int64("amount", amount))
	return amount, nil
}

// GetTrade returns a copy of the full trade record.
func (l *Ledger) GetTrade(id int64) (*models.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.getLocked(id)
	if err != nil {
		return nil, err
	}
	return cloneTrade(t), nil
}

// FeeBalance is the accumulated, not-yet-withdrawn fee balance.
func (l *Ledger) FeeBalance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.feeBalance
}

type TradeFilter struct {
	Status *string
	Party  *uuid.UUID // matches seller or buyer
	Active bool       // only non-terminal trades
	Limit  int
}

// ListTrades returns matching trades, newest first.
func (l *Ledger) ListTrades(f TradeFilter) []models.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.Trade
	for _, t := range l.trades {
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Active && models.IsTerminalStatus(t.Status) {
			continue
		}
		if f.Party != nil && t.Seller != *f.Party && (t.Buyer == nil || *t.Buyer != *f.Party) {
			continue
		}
		out = append(out, *cloneTrade(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// --- internals; callers hold l.mu ---

func (l *Ledger) getLocked(id int64) (*models.Trade, error) {
	t, ok := l.trades[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrTradeNotFound, id)
	}
	return t, nil
}

// transitionLocked validates and commits a status move, mirrors it to the
// store, and emits the audit row and status-changed event.
func (l *Ledger) transitionLocked(ctx context.Context, t *models.Trade, newStatus string, actor *uuid.UUID, actorType string) error {
	if !models.IsValidTransition(t.Status, newStatus) {
		return fmt.Errorf("%w: trade %d cannot move from %s to %s", ErrInvalidStatus, t.ID, t.Status, newStatus)
	}

	oldStatus := t.Status
	t.Status = newStatus
	l.persistLocked(ctx, t)

	_ = l.audit.Log(ctx, models.AuditLog{
		ActorPartyID: actor,
		ActorType:    actorType,
		Action:       fmt.Sprintf("trade_status_%s_to_%s", oldStatus, newStatus),
		EntityType:   "trade",
		EntityID:     &t.ID,
		Meta:         map[string]any{"old_status": oldStatus, "new_status": newStatus},
	})
	_ = l.publisher.Publish(ctx, events.TradeStream, events.Event{
		Type: events.EventTradeStatusChanged,
		Payload: map[string]any{
			"trade_id":   t.ID,
			"old_status": oldStatus,
			"new_status": newStatus,
		},
	})

	l.log.Info("trade status changed",
		zap.Int64("trade_id", t.ID),
		zap.String("old_status", oldStatus),
		zap.String("new_status", newStatus),
	)
	return nil
}

// settleLocked pays the seller amount-fee, books both fee legs into the
// fee balance, and completes the trade. Reached via confirmation, a
// seller-favoring dispute verdict, or the sent-stage timeout — all three
// produce the identical payout.
func (l *Ledger) settleLocked(ctx context.Context, t *models.Trade, actor *uuid.UUID, actorType string) error {
	payout := SellerPayout(t.Amount)
	if err := l.transfers.Credit(ctx, t.Seller, payout); err != nil {
		return fmt.Errorf("credit seller: %w", err)
	}
	l.feeBalance += FeeTake(t.Amount)

	if err := l.transitionLocked(ctx, t, models.TradeStatusCompleted, actor, actorType); err != nil {
		return err
	}
	l.publishTransfer(ctx, t.ID, custodyParty, t.Seller.String(), payout)
	return nil
}

// refundLocked returns the buyer's full custodied amount, fee included,
// and marks the trade refunded. No fee is taken on a refund.
func (l *Ledger) refundLocked(ctx context.Context, t *models.Trade, actor *uuid.UUID, actorType string) error {
	refund := BuyerObligation(t.Amount)
	if err := l.transfers.Credit(ctx, *t.Buyer, refund); err != nil {
		return fmt.Errorf("credit buyer: %w", err)
	}

	if err := l.transitionLocked(ctx, t, models.TradeStatusRefunded, actor, actorType); err != nil {
		return err
	}
	l.publishTransfer(ctx, t.ID, custodyParty, t.Buyer.String(), refund)
	return nil
}

func (l *Ledger) persistLocked(ctx context.Context, t *models.Trade) {
	_ = l.store.UpsertTrade(ctx, t)
	_ = l.store.SaveState(ctx, l.nextID, l.feeBalance)
}

func (l *Ledger) publishTransfer(ctx context.Context, tradeID int64, from, to string, amount int64) {
	_ = l.publisher.Publish(ctx, events.TradeStream, events.Event{
		Type: events.EventTransferExecuted,
		Payload: map[string]any{
			"trade_id": tradeID,
			"from":     from,
			"to":       to,
			"amount":   amount,
		},
	})
}

func cloneTrade(t *models.Trade) *models.Trade {
	c := *t
	if t.Buyer != nil {
		b := *t.Buyer
		c.Buyer = &b
	}
	if t.PaidAt != nil {
		ts := *t.PaidAt
		c.PaidAt = &ts
	}
	if t.SentAt != nil {
		ts := *t.SentAt
		c.SentAt = &ts
	}
	return &c
}
