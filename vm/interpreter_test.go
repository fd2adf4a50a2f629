package vm

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/bytecode"
	"github.com/eth2030/evmcore/evmtypes"
	"github.com/eth2030/evmcore/gas"
	"github.com/eth2030/evmcore/host"
	"github.com/eth2030/evmcore/params"
)

func newTestInterpreter(h host.Host) *Interpreter {
	al := host.NewAccessList()
	al.PreWarm(evmtypes.Address{}, nil, nil)
	return NewInterpreter(h, host.Env{}, params.CancunSpec(), al)
}

func newTestContract(caller, addr evmtypes.Address, code []byte, gasLimit uint64) *Contract {
	c := NewContract(caller, addr, new(uint256.Int), gasLimit, gas.MaxRefundQuotient)
	c.SetCallCode(addr, bytecode.Analyze(code))
	return c
}

func TestRunAddAndReturn(t *testing.T) {
	h := newFakeHost()
	interp := newTestInterpreter(h)

	// PUSH1 2 PUSH1 3 ADD PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	code := []byte{
		byte(PUSH1), 2,
		byte(PUSH1), 3,
		byte(ADD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}

	addr := evmtypes.Address{1}
	c := newTestContract(evmtypes.Address{9}, addr, code, 100000)

	out, err := interp.Run(c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 32 || out[31] != 5 {
		t.Fatalf("out = %x, want 32-byte 5", out)
	}
}

func TestRunStackUnderflow(t *testing.T) {
	h := newFakeHost()
	interp := newTestInterpreter(h)

	addr := evmtypes.Address{1}
	c := newTestContract(evmtypes.Address{9}, addr, []byte{byte(ADD)}, 100000)

	_, err := interp.Run(c, nil)
	if err != ErrStackUnderflow {
		t.Fatalf("err = %v, want ErrStackUnderflow", err)
	}
}

func TestRunOutOfGas(t *testing.T) {
	h := newFakeHost()
	interp := newTestInterpreter(h)

	code := []byte{byte(PUSH1), 1, byte(PUSH1), 2, byte(ADD)}
	addr := evmtypes.Address{1}
	c := newTestContract(evmtypes.Address{9}, addr, code, 3)

	_, err := interp.Run(c, nil)
	if err != ErrOutOfGas {
		t.Fatalf("err = %v, want ErrOutOfGas", err)
	}
}

func TestSstoreSloadRoundtrip(t *testing.T) {
	h := newFakeHost()
	interp := newTestInterpreter(h)

	addr := evmtypes.Address{1}
	code := []byte{
		byte(PUSH1), 42,
		byte(PUSH1), 7,
		byte(SSTORE),
		byte(PUSH1), 7,
		byte(SLOAD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	c := newTestContract(evmtypes.Address{9}, addr, code, 1_000_000)

	out, err := interp.Run(c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out[31] != 42 {
		t.Fatalf("SLOAD result = %d, want 42", out[31])
	}
}

func TestInvalidJumpDest(t *testing.T) {
	h := newFakeHost()
	interp := newTestInterpreter(h)

	addr := evmtypes.Address{1}
	code := []byte{byte(PUSH1), 5, byte(JUMP), byte(JUMPDEST)}
	c := newTestContract(evmtypes.Address{9}, addr, code, 100000)

	_, err := interp.Run(c, nil)
	if err != ErrInvalidJump {
		t.Fatalf("err = %v, want ErrInvalidJump", err)
	}
}

func TestStaticCallForbidsSstore(t *testing.T) {
	h := newFakeHost()
	interp := newTestInterpreter(h)

	addr := evmtypes.Address{1}
	code := []byte{byte(PUSH1), 1, byte(PUSH1), 1, byte(SSTORE)}
	c := newTestContract(evmtypes.Address{9}, addr, code, 100000)
	c.ReadOnly = true

	_, err := interp.Run(c, nil)
	if err != ErrWriteProtection {
		t.Fatalf("err = %v, want ErrWriteProtection", err)
	}
}

func TestSstoreClearEarnsRefund(t *testing.T) {
	h := newFakeHost()
	interp := newTestInterpreter(h)

	addr := evmtypes.Address{1}
	key := new(uint256.Int).SetUint64(7)
	one := new(uint256.Int).SetUint64(1)
	h.slotMap(h.storage, addr)[*key] = one.Clone()
	h.slotMap(h.original, addr)[*key] = one.Clone()
	// Clear a slot that was already nonzero at the start of this transaction
	// back to zero: original == current == 1, so this first write to the
	// slot in the transaction earns the SstoreClearsSchedule refund.
	code := []byte{
		byte(PUSH1), 0,
		byte(PUSH1), 7,
		byte(SSTORE),
		byte(STOP),
	}
	c := newTestContract(evmtypes.Address{9}, addr, code, 1_000_000)

	_, err := interp.Run(c, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Gas.RefundedRaw() <= 0 {
		t.Fatalf("RefundedRaw() = %d, want > 0 after clearing a nonzero slot", c.Gas.RefundedRaw())
	}
}
