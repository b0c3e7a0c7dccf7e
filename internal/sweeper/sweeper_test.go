package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/trade-escrow/backend/internal/assets"
	"github.com/trade-escrow/backend/internal/escrow"
	"github.com/trade-escrow/backend/internal/events"
	"github.com/trade-escrow/backend/internal/models"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type nopStore struct{}

func (nopStore) UpsertTrade(ctx context.Context, t *models.Trade) error { return nil }
func (nopStore) ListTrades(ctx context.Context) ([]models.Trade, error) {
	return nil, nil
}
func (nopStore) SaveState(ctx context.Context, nextTradeID, feeBalance int64) error { return nil }
func (nopStore) LoadState(ctx context.Context) (int64, int64, error)                { return 1, 0, nil }

type nopAudit struct{}

func (nopAudit) Log(ctx context.Context, entry models.AuditLog) error { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, stream string, event events.Event) error {
	return nil
}

func TestSweepResolvesDueTrades(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
	transfers := assets.NewMemoryLedger()
	owner := uuid.New()
	seller := uuid.New()
	buyer := uuid.New()
	transfers.Mint(buyer, 1_000_000)

	ledger := escrow.NewLedger(owner, 12*time.Hour, transfers, clock, nopStore{}, nopAudit{}, nopPublisher{}, zap.NewNop())

	// One trade per expiry branch, plus one not yet due.
	createdTrade, err := ledger.CreateTrade(ctx, seller, 10_000)
	if err != nil {
		t.Fatal(err)
	}

	paidTrade, err := ledger.CreateTrade(ctx, seller, 10_000)
	if err != nil {
		t.Fatal(err)
	}
	if err := ledger.PayTrade(ctx, paidTrade.ID, buyer); err != nil {
		t.Fatal(err)
	}

	sentTrade, err := ledger.CreateTrade(ctx, seller, 10_000)
	if err != nil {
		t.Fatal(err)
	}
	if err := ledger.PayTrade(ctx, sentTrade.ID, buyer); err != nil {
		t.Fatal(err)
	}
	if err := ledger.MarkAsSent(ctx, sentTrade.ID, seller); err != nil {
		t.Fatal(err)
	}

	clock.Advance(12*time.Hour + time.Minute)

	freshTrade, err := ledger.CreateTrade(ctx, seller, 10_000)
	if err != nil {
		t.Fatal(err)
	}

	sw := New(ledger, clock, 12*time.Hour, time.Minute, owner, zap.NewNop())
	sw.sweep(ctx)

	wantStatus := map[int64]string{
		createdTrade.ID: models.TradeStatusExpired,
		paidTrade.ID:    models.TradeStatusRefunded,
		sentTrade.ID:    models.TradeStatusCompleted,
		freshTrade.ID:   models.TradeStatusCreated,
	}
	for id, want := range wantStatus {
		got, err := ledger.GetTrade(id)
		if err != nil {
			t.Fatalf("GetTrade(%d): %v", id, err)
		}
		if got.Status != want {
			t.Errorf("trade %d status = %s, want %s", id, got.Status, want)
		}
	}

	// A second sweep finds nothing left to do.
	sw.sweep(ctx)
	if got, _ := ledger.GetTrade(freshTrade.ID); got.Status != models.TradeStatusCreated {
		t.Errorf("fresh trade status = %s, want %s", got.Status, models.TradeStatusCreated)
	}
}
