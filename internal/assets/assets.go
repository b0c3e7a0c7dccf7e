// Package assets is the ledger's view of the external asset transfer
// service. The escrow core only ever moves funds through the two custody
// primitives; each call is atomic and all-or-nothing on the service side.
package assets

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// TransferService moves the fungible asset between parties and the
// custodial account held on behalf of the escrow ledger.
type TransferService interface {
	// Debit moves amount from the party into custody. Fails with
	// ErrInsufficientFunds (no partial application) when the party's
	// available balance is below amount.
	Debit(ctx context.Context, from uuid.UUID, amount int64) error

	// Credit moves amount from custody to the party. Given the ledger's
	// conservation invariant the custodial balance always covers it.
	Credit(ctx context.Context, to uuid.UUID, amount int64) error

	BalanceOf(ctx context.Context, party uuid.UUID) (int64, error)
	CustodyBalance(ctx context.Context) (int64, error)
}
