package models

import (
	"time"

	"github.com/google/uuid"
)

// Trade statuses
const (
	TradeStatusCreated   = "created"
	TradeStatusPaid      = "paid"
	TradeStatusSent      = "sent"
	TradeStatusCompleted = "completed"
	TradeStatusExpired   = "expired"
	TradeStatusRefunded  = "refunded"
	TradeStatusDispute   = "dispute"
)

// Valid state transitions: from -> []to
var ValidTradeTransitions = map[string][]string{
	TradeStatusCreated:   {TradeStatusPaid, TradeStatusExpired},
	TradeStatusPaid:      {TradeStatusSent, TradeStatusRefunded},
	TradeStatusSent:      {TradeStatusCompleted, TradeStatusDispute},
	TradeStatusDispute:   {TradeStatusCompleted, TradeStatusRefunded},
	TradeStatusCompleted: {},
	TradeStatusExpired:   {},
	TradeStatusRefunded:  {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidTradeTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a trade in this status can never move again.
func IsTerminalStatus(status string) bool {
	return len(ValidTradeTransitions[status]) == 0
}

// Trade is one escrow agreement between a seller and a buyer for a fixed
// amount of the asset, denominated in its smallest unit. Buyer is nil until
// the trade is paid and immutable afterwards.
type Trade struct {
	ID        int64      `json:"id"`
	Seller    uuid.UUID  `json:"seller"`
	Buyer     *uuid.UUID `json:"buyer,omitempty"`
	Amount    int64      `json:"amount"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}
