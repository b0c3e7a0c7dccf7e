package escrow

import "errors"

// The error taxonomy of the ledger. Every failure is synchronous, leaves
// no state behind, and retry is the caller's responsibility.
var (
	// ErrTradeNotFound — no trade with that id was ever created.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrNotAuthorized — the caller is not the party the operation requires.
	ErrNotAuthorized = errors.New("caller is not authorized for this operation")

	// ErrInvalidStatus — the trade is not in the status the operation requires.
	ErrInvalidStatus = errors.New("trade is not in the required status")

	// ErrDeadlineNotReached — expireTrade was invoked before the escrow window elapsed.
	ErrDeadlineNotReached = errors.New("escrow window has not elapsed")

	// ErrInvalidAmount — zero or negative amount at creation.
	ErrInvalidAmount = errors.New("trade amount must be positive")
)
