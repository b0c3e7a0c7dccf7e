package assets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger implements TransferService on the accounts table. Custody
// is a dedicated account row; a transfer is a single transaction that
// conditionally debits one row and credits the other, so it either fully
// applies or not at all.
type PostgresLedger struct {
	pool    *pgxpool.Pool
	custody uuid.UUID
}

func NewPostgresLedger(pool *pgxpool.Pool, custody uuid.UUID) *PostgresLedger {
	return &PostgresLedger{pool: pool, custody: custody}
}

func (l *PostgresLedger) Debit(ctx context.Context, from uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	return l.transfer(ctx, from, l.custody, amount)
}

func (l *PostgresLedger) Credit(ctx context.Context, to uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return l.transfer(ctx, l.custody, to, amount)
}

func (l *PostgresLedger) transfer(ctx context.Context, from, to uuid.UUID, amount int64) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = balance - $1, updated_at = now()
		WHERE party_id = $2 AND balance >= $1
	`, amount, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s cannot cover %d", ErrInsufficientFunds, from, amount)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (party_id, balance) VALUES ($1, $2)
		ON CONFLICT (party_id) DO UPDATE SET balance = accounts.balance + $2, updated_at = now()
	`, to, amount)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (l *PostgresLedger) BalanceOf(ctx context.Context, party uuid.UUID) (int64, error) {
	var balance int64
	err := l.pool.QueryRow(ctx, `
		SELECT COALESCE((SELECT balance FROM accounts WHERE party_id = $1), 0)
	`, party).Scan(&balance)
	return balance, err
}

func (l *PostgresLedger) CustodyBalance(ctx context.Context) (int64, error) {
	return l.BalanceOf(ctx, l.custody)
}

// Mint issues new units to a party. Exposed only behind the dev faucet
// flag; on a real deployment issuance belongs to the asset, not the escrow.
func (l *PostgresLedger) Mint(ctx context.Context, party uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("mint amount must be positive, got %d", amount)
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO accounts (party_id, balance) VALUES ($1, $2)
		ON CONFLICT (party_id) DO UPDATE SET balance = accounts.balance + $2, updated_at = now()
	`, party, amount)
	return err
}
