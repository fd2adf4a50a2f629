package vm

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/gas"
	"github.com/eth2030/evmcore/memory"
	"github.com/eth2030/evmcore/params"
	"github.com/eth2030/evmcore/stack"
)

// executionFunc runs one opcode's handler. JUMP/JUMPI handlers set pc
// themselves (operation.jumps) and the loop leaves it alone; for every
// other opcode the interpreter loop increments pc by one after the call
// returns, on top of the immediate bytes a PUSHn handler skips itself.
type executionFunc func(pc *uint64, interp *Interpreter, contract *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error)

// memorySizeFunc returns the byte size memory must be grown to for this
// opcode to execute, given the stack as it stands before any pops. The
// bool return is true on a size computation overflow, which the caller
// must treat as an immediate OutOfGas.
type memorySizeFunc func(stk *stack.Stack) (uint64, bool)

// dynamicGasFunc computes the non-constant portion of an opcode's gas
// cost (memory expansion, cold/warm surcharges, per-byte costs, ...).
// memSize is the word-aligned size memorySizeFunc already computed.
type dynamicGasFunc func(interp *Interpreter, contract *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error)

// operation is one opcode's full execution metadata.
type operation struct {
	execute     executionFunc
	constantGas uint64
	dynamicGas  dynamicGasFunc
	minStack    int
	maxStack    int
	memorySize  memorySizeFunc
	halts       bool // STOP, RETURN, REVERT, SELFDESTRUCT, INVALID
	jumps       bool // JUMP, JUMPI: handler advances pc itself
	writes      bool // disallowed inside a static call
}

// JumpTable maps every opcode byte to its operation, nil where undefined.
type JumpTable [256]*operation

func uint64OrMax(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

// memRange computes offset+size for a non-empty range. Operands that do
// not fit in a uint64 saturate at math.MaxUint64; a sum that overflows
// uint64 is reported through the bool.
func memRange(offset, size *uint256.Int) (uint64, bool) {
	if size.IsZero() {
		return 0, false
	}
	o, s := uint64OrMax(offset), uint64OrMax(size)
	sum := o + s
	if sum < o {
		return 0, true
	}
	return sum, false
}

func memSingle(a *uint256.Int, extra uint64) (uint64, bool) {
	o := uint64OrMax(a)
	sum := o + extra
	if sum < o {
		return 0, true
	}
	return sum, false
}

// --- memory size functions, by stack layout ---

func memLoad32(stk *stack.Stack) (uint64, bool) {
	v, _ := stk.Peek(0)
	return memSingle(v, 32)
}

func memStore8(stk *stack.Stack) (uint64, bool) {
	v, _ := stk.Peek(0)
	return memSingle(v, 1)
}

func memOffsetSize(offIdx, sizeIdx int) memorySizeFunc {
	return func(stk *stack.Stack) (uint64, bool) {
		o, _ := stk.Peek(offIdx)
		s, _ := stk.Peek(sizeIdx)
		return memRange(o, s)
	}
}

func memCallLike(argsOff, argsLen, retOff, retLen int) memorySizeFunc {
	return func(stk *stack.Stack) (uint64, bool) {
		aOff, _ := stk.Peek(argsOff)
		aLen, _ := stk.Peek(argsLen)
		rOff, _ := stk.Peek(retOff)
		rLen, _ := stk.Peek(retLen)
		argsEnd, ovf1 := memRange(aOff, aLen)
		retEnd, ovf2 := memRange(rOff, rLen)
		if ovf1 || ovf2 {
			return 0, true
		}
		if argsEnd > retEnd {
			return argsEnd, false
		}
		return retEnd, false
	}
}

// --- dynamic gas: shared memory expansion wrapper ---

func withMemExpansion(extra dynamicGasFunc) dynamicGasFunc {
	return func(interp *Interpreter, contract *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
		cost := contract.Gas.MemoryExpansionCost(memSize)
		if extra != nil {
			more, err := extra(interp, contract, stk, mem, memSize)
			if err != nil {
				return 0, err
			}
			cost += more
		}
		return cost, nil
	}
}

func gasMemExpansionOnly(interp *Interpreter, contract *Contract, stk *stack.Stack, mem *memory.Memory, memSize uint64) (uint64, error) {
	return contract.Gas.MemoryExpansionCost(memSize), nil
}

// round rounds size up to the next whole 32-byte word boundary.
func round(size uint64) uint64 {
	if size == 0 {
		return 0
	}
	return (size + 31) / 32 * 32
}

const maxStackLimit = stack.Limit

// NewFrontierJumpTable returns the Frontier (genesis) jump table: every
// opcode available from the first block, fully wired to real gas/memory/
// stack semantics (no stubs).
func NewFrontierJumpTable() JumpTable {
	var tbl JumpTable

	tbl[STOP] = &operation{execute: opStop, constantGas: gas.Zero, minStack: 0, maxStack: maxStackLimit, halts: true}

	arith := func(exec executionFunc, cost uint64, nPop int) *operation {
		return &operation{execute: exec, constantGas: cost, minStack: nPop, maxStack: maxStackLimit}
	}
	tbl[ADD] = arith(opAdd, gas.VeryLow, 2)
	tbl[MUL] = arith(opMul, gas.Low, 2)
	tbl[SUB] = arith(opSub, gas.VeryLow, 2)
	tbl[DIV] = arith(opDiv, gas.Low, 2)
	tbl[SDIV] = arith(opSdiv, gas.Low, 2)
	tbl[MOD] = arith(opMod, gas.Low, 2)
	tbl[SMOD] = arith(opSmod, gas.Low, 2)
	tbl[ADDMOD] = arith(opAddmod, gas.Mid, 3)
	tbl[MULMOD] = arith(opMulmod, gas.Mid, 3)
	tbl[EXP] = &operation{execute: opExp, constantGas: gas.High, dynamicGas: gasExp, minStack: 2, maxStack: maxStackLimit}
	tbl[SIGNEXTEND] = arith(opSignExtend, gas.Low, 2)

	tbl[LT] = arith(opLt, gas.VeryLow, 2)
	tbl[GT] = arith(opGt, gas.VeryLow, 2)
	tbl[SLT] = arith(opSlt, gas.VeryLow, 2)
	tbl[SGT] = arith(opSgt, gas.VeryLow, 2)
	tbl[EQ] = arith(opEq, gas.VeryLow, 2)
	tbl[ISZERO] = arith(opIsZero, gas.VeryLow, 1)
	tbl[AND] = arith(opAnd, gas.VeryLow, 2)
	tbl[OR] = arith(opOr, gas.VeryLow, 2)
	tbl[XOR] = arith(opXor, gas.VeryLow, 2)
	tbl[NOT] = arith(opNot, gas.VeryLow, 1)
	tbl[BYTE] = arith(opByte, gas.VeryLow, 2)

	tbl[KECCAK256] = &operation{execute: opKeccak256, constantGas: gas.Keccak256, dynamicGas: gasKeccak256, minStack: 2, maxStack: maxStackLimit, memorySize: memOffsetSize(0, 1)}

	tbl[ADDRESS] = arith(opAddress, gas.Base, 0)
	tbl[BALANCE] = &operation{execute: opBalance, constantGas: gas.Zero, dynamicGas: gasAccountAccess, minStack: 1, maxStack: maxStackLimit}
	tbl[ORIGIN] = arith(opOrigin, gas.Base, 0)
	tbl[CALLER] = arith(opCaller, gas.Base, 0)
	tbl[CALLVALUE] = arith(opCallValue, gas.Base, 0)
	tbl[CALLDATALOAD] = arith(opCalldataLoad, gas.VeryLow, 1)
	tbl[CALLDATASIZE] = arith(opCalldataSize, gas.Base, 0)
	tbl[CALLDATACOPY] = &operation{execute: opCalldataCopy, constantGas: gas.VeryLow, dynamicGas: gasCopy(2), minStack: 3, maxStack: maxStackLimit, memorySize: memOffsetSize(0, 2)}
	tbl[CODESIZE] = arith(opCodeSize, gas.Base, 0)
	tbl[CODECOPY] = &operation{execute: opCodeCopy, constantGas: gas.VeryLow, dynamicGas: gasCopy(2), minStack: 3, maxStack: maxStackLimit, memorySize: memOffsetSize(0, 2)}
	tbl[GASPRICE] = arith(opGasPrice, gas.Base, 0)
	tbl[EXTCODESIZE] = &operation{execute: opExtcodesize, constantGas: gas.Zero, dynamicGas: gasAccountAccess, minStack: 1, maxStack: maxStackLimit}
	tbl[EXTCODECOPY] = &operation{execute: opExtcodecopy, constantGas: gas.Zero, dynamicGas: gasExtcodecopy, minStack: 4, maxStack: maxStackLimit, memorySize: memOffsetSize(1, 3)}

	tbl[BLOCKHASH] = arith(opBlockhash, gas.Ext, 1)
	tbl[COINBASE] = arith(opCoinbase, gas.Base, 0)
	tbl[TIMESTAMP] = arith(opTimestamp, gas.Base, 0)
	tbl[NUMBER] = arith(opNumber, gas.Base, 0)
	tbl[PREVRANDAO] = arith(opPrevRandao, gas.Base, 0)
	tbl[GASLIMIT] = arith(opGasLimit, gas.Base, 0)

	tbl[POP] = &operation{execute: opPop, constantGas: gas.Base, minStack: 1, maxStack: maxStackLimit}
	tbl[MLOAD] = &operation{execute: opMload, constantGas: gas.VeryLow, dynamicGas: gasMemExpansionOnly, minStack: 1, maxStack: maxStackLimit, memorySize: memLoad32}
	tbl[MSTORE] = &operation{execute: opMstore, constantGas: gas.VeryLow, dynamicGas: gasMemExpansionOnly, minStack: 2, maxStack: maxStackLimit, memorySize: memLoad32}
	tbl[MSTORE8] = &operation{execute: opMstore8, constantGas: gas.VeryLow, dynamicGas: gasMemExpansionOnly, minStack: 2, maxStack: maxStackLimit, memorySize: memStore8}
	tbl[SLOAD] = &operation{execute: opSload, constantGas: gas.Zero, dynamicGas: gasSload, minStack: 1, maxStack: maxStackLimit}
	tbl[SSTORE] = &operation{execute: opSstore, constantGas: gas.Zero, dynamicGas: gasSstore, minStack: 2, maxStack: maxStackLimit, writes: true}
	tbl[JUMP] = &operation{execute: opJump, constantGas: gas.Mid, minStack: 1, maxStack: maxStackLimit, jumps: true}
	tbl[JUMPI] = &operation{execute: opJumpi, constantGas: gas.High, minStack: 2, maxStack: maxStackLimit, jumps: true}
	tbl[PC] = arith(opPc, gas.Base, 0)
	tbl[MSIZE] = arith(opMsize, gas.Base, 0)
	tbl[GAS] = arith(opGasOp, gas.Base, 0)
	tbl[JUMPDEST] = &operation{execute: opJumpdest, constantGas: gas.JumpDest, minStack: 0, maxStack: maxStackLimit}

	tbl[PUSH1] = &operation{execute: makePush(1), constantGas: gas.VeryLow, minStack: 0, maxStack: maxStackLimit - 1}
	for i := 2; i <= 32; i++ {
		tbl[PUSH1+OpCode(i-1)] = &operation{execute: makePush(i), constantGas: gas.VeryLow, minStack: 0, maxStack: maxStackLimit - 1}
	}
	for i := 1; i <= 16; i++ {
		tbl[DUP1+OpCode(i-1)] = &operation{execute: makeDup(i), constantGas: gas.VeryLow, minStack: i, maxStack: maxStackLimit - 1}
	}
	for i := 1; i <= 16; i++ {
		tbl[SWAP1+OpCode(i-1)] = &operation{execute: makeSwap(i), constantGas: gas.VeryLow, minStack: i + 1, maxStack: maxStackLimit}
	}

	for i := 0; i <= 4; i++ {
		n := i
		tbl[LOG0+OpCode(i)] = &operation{
			execute:     makeLog(n),
			constantGas: gas.LogBase,
			dynamicGas:  gasLog(n),
			minStack:    2 + n,
			maxStack:    maxStackLimit,
			memorySize:  memOffsetSize(0, 1),
			writes:      true,
		}
	}

	tbl[CREATE] = &operation{execute: opCreate, constantGas: gas.CreateGas, dynamicGas: gasCreate, minStack: 3, maxStack: maxStackLimit, memorySize: memOffsetSize(1, 2), writes: true}
	// CALL is not marked writes: true at the table level, because only a
	// value-transferring CALL is forbidden in a static context; a
	// zero-value CALL is allowed. call() enforces that distinction itself.
	tbl[CALL] = &operation{execute: opCall, constantGas: gas.Zero, dynamicGas: gasCall, minStack: 7, maxStack: maxStackLimit, memorySize: memCallLike(3, 4, 5, 6)}
	tbl[CALLCODE] = &operation{execute: opCallCode, constantGas: gas.Zero, dynamicGas: gasCallCode, minStack: 7, maxStack: maxStackLimit, memorySize: memCallLike(3, 4, 5, 6)}
	tbl[RETURN] = &operation{execute: opReturn, constantGas: gas.Zero, dynamicGas: gasMemExpansionOnly, minStack: 2, maxStack: maxStackLimit, memorySize: memOffsetSize(0, 1), halts: true}
	tbl[INVALID] = &operation{execute: opInvalid, constantGas: gas.Zero, minStack: 0, maxStack: maxStackLimit, halts: true}
	tbl[SELFDESTRUCT] = &operation{execute: opSelfdestruct, constantGas: gas.SelfdestructGasFrontier, dynamicGas: gasSelfdestruct, minStack: 1, maxStack: maxStackLimit, halts: true, writes: true}

	return tbl
}

// NewHomesteadJumpTable: DELEGATECALL (EIP-7).
func NewHomesteadJumpTable() JumpTable {
	tbl := NewFrontierJumpTable()
	tbl[DELEGATECALL] = &operation{execute: opDelegateCall, constantGas: gas.Zero, dynamicGas: gasDelegateCall, minStack: 6, maxStack: maxStackLimit, memorySize: memCallLike(2, 3, 4, 5)}
	return tbl
}

// NewTangerineWhistleJumpTable: EIP-150 repriced BALANCE/EXTCODE*/SLOAD's
// flat per-fork tier (supplied by params.Spec at dispatch time, no opcode
// wiring change needed) and introduced SELFDESTRUCT's 5000 base cost.
func NewTangerineWhistleJumpTable() JumpTable {
	tbl := NewHomesteadJumpTable()
	tbl[SELFDESTRUCT] = &operation{execute: opSelfdestruct, constantGas: gas.SelfdestructGas, dynamicGas: gasSelfdestruct, minStack: 1, maxStack: maxStackLimit, halts: true, writes: true}
	return tbl
}

// NewSpuriousDragonJumpTable: EIP-158/160/170 are gas-table and size-limit
// changes, not opcode-availability changes.
func NewSpuriousDragonJumpTable() JumpTable {
	return NewTangerineWhistleJumpTable()
}

// NewByzantiumJumpTable: REVERT, STATICCALL, RETURNDATASIZE, RETURNDATACOPY.
func NewByzantiumJumpTable() JumpTable {
	tbl := NewSpuriousDragonJumpTable()
	tbl[REVERT] = &operation{execute: opRevert, constantGas: gas.Zero, dynamicGas: gasMemExpansionOnly, minStack: 2, maxStack: maxStackLimit, memorySize: memOffsetSize(0, 1), halts: true}
	tbl[STATICCALL] = &operation{execute: opStaticCall, constantGas: gas.Zero, dynamicGas: gasStaticCall, minStack: 6, maxStack: maxStackLimit, memorySize: memCallLike(2, 3, 4, 5)}
	tbl[RETURNDATASIZE] = arith0(opReturndataSize, gas.Base)
	tbl[RETURNDATACOPY] = &operation{execute: opReturndataCopy, constantGas: gas.VeryLow, dynamicGas: gasCopy(2), minStack: 3, maxStack: maxStackLimit, memorySize: memOffsetSize(0, 2)}
	return tbl
}

func arith0(exec executionFunc, cost uint64) *operation {
	return &operation{execute: exec, constantGas: cost, minStack: 0, maxStack: maxStackLimit - 1}
}

// NewConstantinopleJumpTable: SHL, SHR, SAR, EXTCODEHASH, CREATE2.
func NewConstantinopleJumpTable() JumpTable {
	tbl := NewByzantiumJumpTable()
	tbl[SHL] = &operation{execute: opSHL, constantGas: gas.VeryLow, minStack: 2, maxStack: maxStackLimit}
	tbl[SHR] = &operation{execute: opSHR, constantGas: gas.VeryLow, minStack: 2, maxStack: maxStackLimit}
	tbl[SAR] = &operation{execute: opSAR, constantGas: gas.VeryLow, minStack: 2, maxStack: maxStackLimit}
	tbl[EXTCODEHASH] = &operation{execute: opExtcodehash, constantGas: gas.Zero, dynamicGas: gasAccountAccess, minStack: 1, maxStack: maxStackLimit}
	tbl[CREATE2] = &operation{execute: opCreate2, constantGas: gas.CreateGas, dynamicGas: gasCreate2, minStack: 4, maxStack: maxStackLimit, memorySize: memOffsetSize(1, 2), writes: true}
	return tbl
}

// NewIstanbulJumpTable: CHAINID, SELFBALANCE; EIP-1884's SLOAD repricing
// and EIP-2200 net-metered SSTORE are handled in the gas functions via
// params.Spec, not here. BALANCE and EXTCODEHASH keep the flat
// Spec.AccountAccessCost.
func NewIstanbulJumpTable() JumpTable {
	tbl := NewConstantinopleJumpTable()
	tbl[CHAINID] = arith0(opChainID, gas.Base)
	tbl[SELFBALANCE] = arith0(opSelfBalance, gas.Low)
	return tbl
}

// NewBerlinJumpTable: EIP-2929 cold/warm access lists repriced every
// account/storage-touching opcode; handled entirely in the gas functions.
func NewBerlinJumpTable() JumpTable {
	return NewIstanbulJumpTable()
}

// NewLondonJumpTable: BASEFEE (EIP-3198).
func NewLondonJumpTable() JumpTable {
	tbl := NewBerlinJumpTable()
	tbl[BASEFEE] = arith0(opBaseFee, gas.Base)
	return tbl
}

// NewMergeJumpTable: PREVRANDAO replaces DIFFICULTY in the same opcode slot.
func NewMergeJumpTable() JumpTable {
	return NewLondonJumpTable()
}

// NewShanghaiJumpTable: PUSH0 (EIP-3855).
func NewShanghaiJumpTable() JumpTable {
	tbl := NewMergeJumpTable()
	tbl[PUSH0] = arith0(opPush0, gas.Push0)
	return tbl
}

// NewCancunJumpTable: TLOAD/TSTORE (EIP-1153), MCOPY (EIP-5656), BLOBHASH
// (EIP-4844), BLOBBASEFEE (EIP-7516); SELFDESTRUCT's semantics (not its
// jump-table entry) change under EIP-6780.
func NewCancunJumpTable() JumpTable {
	tbl := NewShanghaiJumpTable()
	tbl[TLOAD] = &operation{execute: opTload, constantGas: gas.TloadGas, minStack: 1, maxStack: maxStackLimit}
	tbl[TSTORE] = &operation{execute: opTstore, constantGas: gas.TstoreGas, minStack: 2, maxStack: maxStackLimit, writes: true}
	tbl[MCOPY] = &operation{execute: opMcopy, constantGas: gas.VeryLow, dynamicGas: gasMcopy, minStack: 3, maxStack: maxStackLimit, memorySize: memMcopy}
	tbl[BLOBHASH] = arith(opBlobHash, gas.BlobHashGas, 1)
	tbl[BLOBBASEFEE] = arith0(opBlobBaseFee, gas.BlobBaseFeeGas)
	return tbl
}

func arith(exec executionFunc, cost uint64, nPop int) *operation {
	return &operation{execute: exec, constantGas: cost, minStack: nPop, maxStack: maxStackLimit}
}

func memMcopy(stk *stack.Stack) (uint64, bool) {
	dst, _ := stk.Peek(0)
	src, _ := stk.Peek(1)
	size, _ := stk.Peek(2)
	dEnd, ovf1 := memRange(dst, size)
	sEnd, ovf2 := memRange(src, size)
	if ovf1 || ovf2 {
		return 0, true
	}
	if dEnd > sEnd {
		return dEnd, false
	}
	return sEnd, false
}

// NewPragueJumpTable: Prague adds no opcodes, so the table equals Cancun's.
// The CREATE collision check is Host.HasCollision on every fork; the
// interpreter reads neither Spec.HasEIP7702 nor Spec.HasStorageCollisionCheck.
func NewPragueJumpTable() JumpTable {
	return NewCancunJumpTable()
}

// JumpTableForFork returns the jump table for the given fork.
func JumpTableForFork(f params.Fork) JumpTable {
	switch f {
	case params.Frontier:
		return NewFrontierJumpTable()
	case params.Homestead:
		return NewHomesteadJumpTable()
	case params.TangerineWhistle:
		return NewTangerineWhistleJumpTable()
	case params.SpuriousDragon:
		return NewSpuriousDragonJumpTable()
	case params.Byzantium:
		return NewByzantiumJumpTable()
	case params.Constantinople:
		return NewConstantinopleJumpTable()
	case params.Istanbul:
		return NewIstanbulJumpTable()
	case params.Berlin:
		return NewBerlinJumpTable()
	case params.London:
		return NewLondonJumpTable()
	case params.Merge:
		return NewMergeJumpTable()
	case params.Shanghai:
		return NewShanghaiJumpTable()
	case params.Cancun:
		return NewCancunJumpTable()
	default:
		return NewPragueJumpTable()
	}
}
