package assets

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryLedgerTransfers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()
	alice := uuid.New()
	bob := uuid.New()

	m.Mint(alice, 1000)

	if err := m.Debit(ctx, alice, 400); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if b, _ := m.BalanceOf(ctx, alice); b != 600 {
		t.Errorf("alice balance = %d, want 600", b)
	}
	if c, _ := m.CustodyBalance(ctx); c != 400 {
		t.Errorf("custody = %d, want 400", c)
	}

	if err := m.Credit(ctx, bob, 300); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if b, _ := m.BalanceOf(ctx, bob); b != 300 {
		t.Errorf("bob balance = %d, want 300", b)
	}
	if c, _ := m.CustodyBalance(ctx); c != 100 {
		t.Errorf("custody = %d, want 100", c)
	}
}

func TestMemoryLedgerInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()
	alice := uuid.New()
	m.Mint(alice, 100)

	err := m.Debit(ctx, alice, 101)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Debit = %v, want ErrInsufficientFunds", err)
	}
	// No partial application.
	if b, _ := m.BalanceOf(ctx, alice); b != 100 {
		t.Errorf("alice balance = %d, want untouched 100", b)
	}

	err = m.Credit(ctx, alice, 1)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Credit from empty custody = %v, want ErrInsufficientFunds", err)
	}
}

func TestMemoryLedgerRejectsNonPositiveAmounts(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()
	alice := uuid.New()
	m.Mint(alice, 100)

	for _, amount := range []int64{0, -1} {
		if err := m.Debit(ctx, alice, amount); err == nil {
			t.Errorf("Debit(%d) succeeded, want error", amount)
		}
		if err := m.Credit(ctx, alice, amount); err == nil {
			t.Errorf("Credit(%d) succeeded, want error", amount)
		}
	}
}

func TestMemoryLedgerUnknownPartyHasZeroBalance(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()

	if b, _ := m.BalanceOf(ctx, uuid.New()); b != 0 {
		t.Errorf("unknown party balance = %d, want 0", b)
	}
}
