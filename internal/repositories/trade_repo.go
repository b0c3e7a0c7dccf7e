package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trade-escrow/backend/internal/models"
)

// TradeRepo mirrors the in-memory trade table to Postgres. The escrow
// ledger writes through on every committed mutation and reads it back
// once at startup; queries against history also come here.
type TradeRepo struct {
	pool *pgxpool.Pool
}

func NewTradeRepo(pool *pgxpool.Pool) *TradeRepo {
	return &TradeRepo{pool: pool}
}

func (r *TradeRepo) UpsertTrade(ctx context.Context, t *models.Trade) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trades (id, seller, buyer, amount, status, created_at, paid_at, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			buyer = EXCLUDED.buyer,
			status = EXCLUDED.status,
			paid_at = EXCLUDED.paid_at,
			sent_at = EXCLUDED.sent_at,
			updated_at = now()
	`, t.ID, t.Seller, t.Buyer, t.Amount, t.Status, t.CreatedAt, t.PaidAt, t.SentAt)
	return err
}

func (r *TradeRepo) ListTrades(ctx context.Context) ([]models.Trade, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, seller, buyer, amount, status, created_at, paid_at, sent_at
		FROM trades ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		if err := rows.Scan(&t.ID, &t.Seller, &t.Buyer, &t.Amount, &t.Status, &t.CreatedAt, &t.PaidAt, &t.SentAt); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (r *TradeRepo) SaveState(ctx context.Context, nextTradeID, feeBalance int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ledger_state (id, next_trade_id, fee_balance)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			next_trade_id = EXCLUDED.next_trade_id,
			fee_balance = EXCLUDED.fee_balance,
			updated_at = now()
	`, nextTradeID, feeBalance)
	return err
}

// LoadState returns the persisted counters, or the initial state of a
// fresh ledger when none were ever saved.
func (r *TradeRepo) LoadState(ctx context.Context) (nextTradeID, feeBalance int64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT next_trade_id, fee_balance FROM ledger_state WHERE id = 1
	`).Scan(&nextTradeID, &feeBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 1, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return nextTradeID, feeBalance, nil
}
