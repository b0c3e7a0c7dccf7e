package models

import (
	"time"

	"github.com/google/uuid"
)

// Party is an authenticated identity. Identity is anchored to an ed25519
// public key proven at login; the uuid is what the escrow ledger stores.
type Party struct {
	ID         uuid.UUID `json:"id"`
	PublicKey  string    `json:"public_key"` // hex
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
