package events

import "context"

// TradeStream is the pub/sub channel carrying all ledger records.
const TradeStream = "events:trade"

// Event types
const (
	EventTradeCreated       = "trade_created"
	EventTradeStatusChanged = "trade_status_changed"
	EventTransferExecuted   = "transfer_executed"
	EventFeesWithdrawn      = "fees_withdrawn"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
