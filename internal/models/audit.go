package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID           uuid.UUID  `json:"id"`
	ActorPartyID *uuid.UUID `json:"actor_party_id,omitempty"`
	ActorType    string     `json:"actor_type"` // party/owner/system
	Action       string     `json:"action"`
	EntityType   string     `json:"entity_type"`
	EntityID     *int64     `json:"entity_id,omitempty"`
	Meta         any        `json:"meta,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
