package gas

import (
	"testing"

	"github.com/holiman/uint256"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestMemoryGasCostFormula(t *testing.T) {
	cases := []struct {
		size uint64
		want uint64
	}{
		{0, 0},
		{1, 3},   // 1 word: 3*1 + 1/512 = 3
		{32, 3},  // exactly 1 word
		{33, 6},  // 2 words: 3*2 + 4/512 = 6
		{1024, 3*32 + 32*32/512}, // 32 words
	}
	for _, c := range cases {
		got := MemoryGasCost(c.size)
		if got != c.want {
			t.Errorf("MemoryGasCost(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestMemoryExpansionGasReissueIsFree(t *testing.T) {
	first := MemoryGasCost(64)
	again := MemoryExpansionGas(64, 64)
	if again != 0 {
		t.Errorf("re-expanding to the same size cost %d, want 0", again)
	}
	_ = first
}

func TestSstoreNoopCostsWarmRead(t *testing.T) {
	// Berlin+: current == new costs WarmStorageReadCost, no refund delta.
	cost, refund := SstoreGas(u(1), u(2), u(2), false, SstoreSet, SstoreReset, ColdSloadCost, WarmStorageReadCost, SstoreClearsRefund)
	if cost != WarmStorageReadCost {
		t.Errorf("no-op SSTORE cost = %d, want %d", cost, WarmStorageReadCost)
	}
	if refund != 0 {
		t.Errorf("no-op SSTORE refund = %d, want 0", refund)
	}
}

func TestSstoreScenarioWarmZeroToNonZero(t *testing.T) {
	// Scenario 5 (Cancun, warm slot): original=0, current=0, new=1 -> 20000, refund 0.
	cost, refund := SstoreGas(u(0), u(0), u(1), false, SstoreSet, SstoreReset, ColdSloadCost, WarmStorageReadCost, SstoreClearsRefund)
	if cost != 20000 || refund != 0 {
		t.Errorf("got (%d, %d), want (20000, 0)", cost, refund)
	}
}

func TestSstoreScenarioColdZeroToNonZero(t *testing.T) {
	// Scenario 5 (Cancun, cold slot): 20000 + 2100 = 22100.
	cost, _ := SstoreGas(u(0), u(0), u(1), true, SstoreSet, SstoreReset, ColdSloadCost, WarmStorageReadCost, SstoreClearsRefund)
	if cost != 22100 {
		t.Errorf("cold SSTORE cost = %d, want 22100", cost)
	}
}

func TestSstoreScenarioRestoreBonus(t *testing.T) {
	// Scenario 6 (Istanbul, no EIP-2929: coldSloadCost=0, warmGas=SLOAD_GAS
	// 800): original=1, current=2, new=1 -> gas 800, refund
	// SstoreReset(5000)-0-800 = +4200.
	cost, refund := SstoreGas(u(1), u(2), u(1), false, SstoreSet, SstoreReset, 0, SloadIstanbul, SstoreClearsRefundPre)
	if cost != SloadIstanbul {
		t.Errorf("cost = %d, want %d", cost, SloadIstanbul)
	}
	wantRefund := int64(SstoreReset) - int64(SloadIstanbul)
	if refund != wantRefund {
		t.Errorf("refund = %d, want %d", refund, wantRefund)
	}
}

func TestSstoreScenarioClearWithEIP3529Refund(t *testing.T) {
	// Scenario 7 (London, warm slot): original=1, current=1, new=0 -> gas
	// SstoreReset(5000)-ColdSloadCost(2100) = 2900, refund 4800 (EIP-3529).
	cost, refund := SstoreGas(u(1), u(1), u(0), false, SstoreSet, SstoreReset, ColdSloadCost, WarmStorageReadCost, SstoreClearsRefund)
	wantCost := SstoreReset - ColdSloadCost
	if cost != wantCost {
		t.Errorf("cost = %d, want %d", cost, wantCost)
	}
	if refund != int64(SstoreClearsRefund) {
		t.Errorf("refund = %d, want %d", refund, SstoreClearsRefund)
	}
}

func TestCallGas63of64Rule(t *testing.T) {
	got := CallGas(6400, 6400)
	want := uint64(6400 - 6400/64)
	if got != want {
		t.Errorf("CallGas(6400,6400) = %d, want %d", got, want)
	}
	// Requesting less than the cap forwards exactly what was requested.
	if got := CallGas(6400, 10); got != 10 {
		t.Errorf("CallGas(6400,10) = %d, want 10", got)
	}
}

func TestExpGasZeroExponent(t *testing.T) {
	if got := ExpGas(u(0), 50); got != 0 {
		t.Errorf("ExpGas(0) = %d, want 0", got)
	}
}

func TestExpGasByteLength(t *testing.T) {
	// 256 needs 2 bytes (0x01, 0x00).
	if got := ExpGas(u(256), 50); got != 100 {
		t.Errorf("ExpGas(256, 50) = %d, want 100", got)
	}
}
