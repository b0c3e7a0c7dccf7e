package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trade-escrow/backend/internal/models"
)

type PartyRepo struct {
	pool *pgxpool.Pool
}

func NewPartyRepo(pool *pgxpool.Pool) *PartyRepo {
	return &PartyRepo{pool: pool}
}

// UpsertByPublicKey registers the key on first login and bumps
// last_seen_at on every subsequent one. The party id never changes for a
// given key.
func (r *PartyRepo) UpsertByPublicKey(ctx context.Context, publicKey string) (*models.Party, error) {
	var p models.Party
	err := r.pool.QueryRow(ctx, `
		INSERT INTO parties (public_key) VALUES ($1)
		ON CONFLICT (public_key) DO UPDATE SET last_seen_at = now()
		RETURNING id, public_key, created_at, last_seen_at
	`, publicKey).Scan(&p.ID, &p.PublicKey, &p.CreatedAt, &p.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	var p models.Party
	err := r.pool.QueryRow(ctx, `
		SELECT id, public_key, created_at, last_seen_at FROM parties WHERE id = $1
	`, id).Scan(&p.ID, &p.PublicKey, &p.CreatedAt, &p.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
