package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryLedger is an in-process TransferService. It backs the test suite
// and local development; production deployments use PostgresLedger.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
	custody  int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[uuid.UUID]int64)}
}

// Mint credits freshly issued units to a party. Test/dev only, the faucet
// analog of the mock asset used on testnets.
func (m *MemoryLedger) Mint(party uuid.UUID, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[party] += amount
}

func (m *MemoryLedger) Debit(ctx context.Context, from uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[from] < amount {
		return fmt.Errorf("%w: party %s has %d, needs %d", ErrInsufficientFunds, from, m.balances[from], amount)
	}
	m.balances[from] -= amount
	m.custody += amount
	return nil
}

func (m *MemoryLedger) Credit(ctx context.Context, to uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.custody < amount {
		return fmt.Errorf("%w: custody holds %d, needs %d", ErrInsufficientFunds, m.custody, amount)
	}
	m.custody -= amount
	m.balances[to] += amount
	return nil
}

func (m *MemoryLedger) BalanceOf(ctx context.Context, party uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[party], nil
}

func (m *MemoryLedger) CustodyBalance(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.custody, nil
}
