package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{TradeStatusCreated, TradeStatusPaid, true},
		{TradeStatusPaid, TradeStatusSent, true},
		{TradeStatusSent, TradeStatusCompleted, true},

		// Dispute path
		{TradeStatusSent, TradeStatusDispute, true},
		{TradeStatusDispute, TradeStatusCompleted, true},
		{TradeStatusDispute, TradeStatusRefunded, true},

		// Timeout paths
		{TradeStatusCreated, TradeStatusExpired, true},
		{TradeStatusPaid, TradeStatusRefunded, true},

		// Invalid transitions
		{TradeStatusCreated, TradeStatusSent, false},
		{TradeStatusCreated, TradeStatusCompleted, false},
		{TradeStatusPaid, TradeStatusCompleted, false},
		{TradeStatusPaid, TradeStatusDispute, false},
		{TradeStatusPaid, TradeStatusExpired, false},
		{TradeStatusSent, TradeStatusRefunded, false},
		{TradeStatusSent, TradeStatusExpired, false},
		{TradeStatusDispute, TradeStatusSent, false},
		{TradeStatusCompleted, TradeStatusRefunded, false},
		{TradeStatusRefunded, TradeStatusCompleted, false},
		{TradeStatusExpired, TradeStatusPaid, false},
		{"nonexistent", TradeStatusPaid, false},
		{TradeStatusCreated, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAllStatusesHaveTransitionEntry(t *testing.T) {
	allStatuses := []string{
		TradeStatusCreated, TradeStatusPaid, TradeStatusSent,
		TradeStatusCompleted, TradeStatusExpired, TradeStatusRefunded,
		TradeStatusDispute,
	}

	for _, status := range allStatuses {
		if _, ok := ValidTradeTransitions[status]; !ok {
			t.Errorf("status %q missing from ValidTradeTransitions map", status)
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{TradeStatusCompleted, TradeStatusExpired, TradeStatusRefunded}
	for _, status := range terminal {
		if !IsTerminalStatus(status) {
			t.Errorf("status %q should be terminal", status)
		}
		transitions := ValidTradeTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}
