package vm

import (
	"github.com/eth2030/evmcore/evmtypes"
	"github.com/eth2030/evmcore/gas"
	"github.com/eth2030/evmcore/memory"
	"github.com/eth2030/evmcore/stack"
	"github.com/holiman/uint256"
)

func addressFromStack(v *uint256.Int) evmtypes.Address {
	return evmtypes.AddressFromU256(v)
}

func keyToB256(v *uint256.Int) evmtypes.B256 {
	return evmtypes.U256ToHash(v)
}

func contractMemCost(c *Contract, memSize uint64) uint64 {
	return c.Gas.MemoryExpansionCost(memSize)
}

// gasExp charges ExpPerByteCost per byte of the exponent (the stack's
// second item; EXP pops the base first, leaving the exponent at depth 1
// before execute runs).
func gasExp(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	exponent, _ := stk.Peek(1)
	return gas.ExpGas(exponent, interp.Spec.ExpPerByteCost), nil
}

func gasKeccak256(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	size, _ := stk.Peek(1)
	return contractMemCost(c, memSize) + gas.Keccak256Gas(uint64OrMax(size)) - gas.Keccak256, nil
}

// gasCopy charges the shared per-word copy surcharge (CALLDATACOPY,
// CODECOPY, RETURNDATACOPY) on top of memory expansion. sizeIdx is the
// stack depth of the length operand before any pops.
func gasCopy(sizeIdx int) dynamicGasFunc {
	return func(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
		size, _ := stk.Peek(sizeIdx)
		return contractMemCost(c, memSize) + gas.CopyGas(uint64OrMax(size)), nil
	}
}

// gasAccountAccess prices BALANCE/EXTCODESIZE/EXTCODEHASH: a flat per-fork
// tier pre-Berlin, or the EIP-2929 cold/warm surcharge from Berlin on.
func gasAccountAccess(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	a, _ := stk.Peek(0)
	addr := addressFromStack(a)
	if !interp.Spec.HasEIP2929 {
		return interp.Spec.AccountAccessCost, nil
	}
	if interp.AccessList.WarmAccount(addr) {
		return interp.Spec.WarmStorageReadCost, nil
	}
	return interp.Spec.ColdAccountAccessCost, nil
}

func gasExtcodecopy(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	a, _ := stk.Peek(0)
	size, _ := stk.Peek(3)
	addr := addressFromStack(a)
	cost := contractMemCost(c, memSize) + gas.CopyGas(uint64OrMax(size))
	if !interp.Spec.HasEIP2929 {
		return cost + interp.Spec.AccountAccessCost, nil
	}
	if interp.AccessList.WarmAccount(addr) {
		return cost + interp.Spec.WarmStorageReadCost, nil
	}
	return cost + interp.Spec.ColdAccountAccessCost, nil
}

func gasSload(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	key, _ := stk.Peek(0)
	if !interp.Spec.HasEIP2929 {
		return interp.Spec.SloadGas, nil
	}
	if interp.AccessList.WarmSlot(c.Address, keyToB256(key)) {
		return interp.Spec.WarmStorageReadCost, nil
	}
	return interp.Spec.ColdSloadCost, nil
}

// gasSstore prices the SSTORE about to execute. It only reads state
// (Host.SLoad/OriginalValue); the actual write happens in opSstore's
// execute, after this charge succeeds.
func gasSstore(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	key, _ := stk.Peek(0)
	newVal, _ := stk.Peek(1)

	cold := false
	if interp.Spec.HasEIP2929 {
		cold = !interp.AccessList.WarmSlot(c.Address, keyToB256(key))
	}

	current := interp.Host.SLoad(c.Address, key)
	if !interp.Spec.HasNetMeteredSstore {
		consumed, refund := gas.SstoreGasLegacy(current, newVal)
		if refund != 0 {
			c.Gas.AdjustRefund(refund)
		}
		return consumed, nil
	}

	original := interp.Host.OriginalValue(c.Address, key)
	consumed, refund := interp.Spec.SstoreGas(original, current, newVal, cold)
	c.Gas.AdjustRefund(refund)
	return consumed, nil
}

func gasLog(n int) dynamicGasFunc {
	return func(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
		size, _ := stk.Peek(1)
		return contractMemCost(c, memSize) + uint64(n)*gas.LogTopic + uint64OrMax(size)*gas.LogData, nil
	}
}

func initCodeWordCost(interp *Interpreter, size *uint256.Int) uint64 {
	if interp.Spec.MaxInitCodeSize == 0 {
		return 0
	}
	words := (uint64OrMax(size) + 31) / 32
	return words * interp.Spec.InitCodeWordCost
}

func gasCreate(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	size, _ := stk.Peek(2)
	return contractMemCost(c, memSize) + initCodeWordCost(interp, size), nil
}

func gasCreate2(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	size, _ := stk.Peek(2)
	cost := contractMemCost(c, memSize) + gas.Keccak256Gas(uint64OrMax(size)) - gas.Keccak256
	return cost + initCodeWordCost(interp, size), nil
}

// accessCost prices the CALL family's cold-account touch: pre-Berlin it is
// the same flat per-fork tier as BALANCE/EXTCODE*; Berlin+ it is the
// EIP-2929 cold/warm surcharge (0 once the account is warm).
func accessCost(interp *Interpreter, addr evmtypes.Address) uint64 {
	if !interp.Spec.HasEIP2929 {
		return interp.Spec.AccountAccessCost
	}
	if interp.AccessList.WarmAccount(addr) {
		return 0
	}
	return interp.Spec.ColdAccountAccessCost
}

// gasCallVariant builds the dynamic-gas function for one CALL-family
// opcode. valueIdx is the stack depth of the value operand (CALL/
// CALLCODE only); hasValue is false for DELEGATECALL/STATICCALL, which
// carry no value operand and never owe the value-transfer surcharge.
func gasCallVariant(valueIdx int, hasValue bool) dynamicGasFunc {
	return func(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
		a, _ := stk.Peek(0)
		addr := addressFromStack(a)
		cost := contractMemCost(c, memSize) + accessCost(interp, addr)

		transfersValue := false
		if hasValue {
			v, _ := stk.Peek(valueIdx)
			transfersValue = !v.IsZero()
			if transfersValue {
				cost += gas.CallValueTransferGas
			}
		}
		if !interp.Host.AccountExists(addr) {
			if hasValue {
				if transfersValue || !interp.Spec.HasEIP158 {
					cost += gas.CallNewAccountGas
				}
			} else if !interp.Spec.HasEIP158 {
				cost += gas.CallNewAccountGas
			}
		}
		return cost, nil
	}
}

var gasCall = gasCallVariant(2, true)
var gasCallCode = gasCallVariant(2, true)
var gasDelegateCall = gasCallVariant(0, false)
var gasStaticCall = gasCallVariant(0, false)

func gasSelfdestruct(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	a, _ := stk.Peek(0)
	beneficiary := addressFromStack(a)

	cost := uint64(0)
	if interp.Spec.HasEIP2929 && !interp.AccessList.WarmAccount(beneficiary) {
		cost += interp.Spec.ColdAccountAccessCost
	}
	if !interp.Host.Balance(c.Address).IsZero() && !interp.Host.AccountExists(beneficiary) {
		cost += gas.CreateBySelfdestructGas
	}
	return cost, nil
}

func gasMcopy(interp *Interpreter, c *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	size, _ := stk.Peek(2)
	return contractMemCost(c, memSize) + gas.CopyGas(uint64OrMax(size)), nil
}
