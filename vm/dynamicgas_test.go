package vm

import (
	"testing"

	"github.com/eth2030/evmcore/evmtypes"
	"github.com/eth2030/evmcore/gas"
	"github.com/eth2030/evmcore/host"
	"github.com/eth2030/evmcore/params"
)

func TestAccessCostFlatPreBerlin(t *testing.T) {
	addr := evmtypes.Address{1}

	frontier := &Interpreter{Spec: params.FrontierSpec(), AccessList: host.NewAccessList()}
	if got := accessCost(frontier, addr); got != 40 {
		t.Errorf("Frontier CALL touch cost = %d, want 40", got)
	}

	tangerine := &Interpreter{Spec: params.TangerineWhistleSpec(), AccessList: host.NewAccessList()}
	if got := accessCost(tangerine, addr); got != 700 {
		t.Errorf("Tangerine Whistle CALL touch cost = %d, want 700", got)
	}
}

func TestAccessCostEIP2929ColdThenWarm(t *testing.T) {
	addr := evmtypes.Address{1}
	berlin := &Interpreter{Spec: params.BerlinSpec(), AccessList: host.NewAccessList()}

	if got := accessCost(berlin, addr); got != gas.ColdAccountAccessCost {
		t.Errorf("first touch = %d, want ColdAccountAccessCost (%d)", got, gas.ColdAccountAccessCost)
	}
	if got := accessCost(berlin, addr); got != 0 {
		t.Errorf("second touch = %d, want 0 (now warm)", got)
	}
}

func TestGasAccountAccessFlatPreBerlin(t *testing.T) {
	h := newFakeHost()
	interp := NewInterpreter(h, host.Env{}, params.FrontierSpec(), host.NewAccessList())

	code := []byte{byte(PUSH1), 1, byte(BALANCE)}
	c := newTestContract(evmtypes.Address{9}, evmtypes.Address{1}, code, 100000)

	_, err := interp.Run(c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// PUSH1(3) + BALANCE(0 constant + 40 dynamic) = 43.
	if c.Gas.Used() != 3+gas.AccountAccessFrontier {
		t.Errorf("gas used = %d, want %d", c.Gas.Used(), 3+gas.AccountAccessFrontier)
	}
}
