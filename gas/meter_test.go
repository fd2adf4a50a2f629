package gas

import (
	"errors"
	"testing"
)

func TestConsumeOutOfGas(t *testing.T) {
	m := NewMeter(10, MaxRefundQuotient)
	if err := m.Consume(5); err != nil {
		t.Fatalf("Consume(5): %v", err)
	}
	if err := m.Consume(6); !errors.Is(err, ErrOutOfGas) {
		t.Fatalf("Consume(6) = %v, want ErrOutOfGas", err)
	}
	if m.Used() != m.Limit() {
		t.Errorf("Used() = %d, want %d (an out-of-gas charge forfeits the whole frame)", m.Used(), m.Limit())
	}
}

func TestFinalRefundCap(t *testing.T) {
	m := NewMeter(1000, MaxRefundQuotient)
	m.Consume(500)
	m.Refund(1000) // far more than used/5 = 100
	if got := m.FinalRefund(); got != 100 {
		t.Errorf("FinalRefund() = %d, want 100 (used/5 cap)", got)
	}
}

func TestFinalRefundBelowCap(t *testing.T) {
	m := NewMeter(1000, MaxRefundQuotient)
	m.Consume(500)
	m.Refund(50)
	if got := m.FinalRefund(); got != 50 {
		t.Errorf("FinalRefund() = %d, want 50", got)
	}
}

func TestFinalRefundNeverNegative(t *testing.T) {
	m := NewMeter(1000, MaxRefundQuotient)
	m.Consume(100)
	m.AdjustRefund(-10)
	if got := m.FinalRefund(); got != 0 {
		t.Errorf("FinalRefund() = %d, want 0", got)
	}
}

func TestMemoryExpansionCostDelta(t *testing.T) {
	m := NewMeter(1_000_000, MaxRefundQuotient)
	first := m.MemoryExpansionCost(64)
	if first == 0 {
		t.Fatalf("expected non-zero cost for first expansion")
	}
	m.UpdateMemoryCost(64)
	if got := m.MemoryExpansionCost(64); got != 0 {
		t.Errorf("re-touching same size cost %d, want 0", got)
	}
	second := m.MemoryExpansionCost(128)
	if second == 0 {
		t.Errorf("expanding further should cost something")
	}
}
