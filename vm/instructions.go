package vm

import (
	"golang.org/x/crypto/sha3"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/evmtypes"
	"github.com/eth2030/evmcore/host"
	"github.com/eth2030/evmcore/memory"
	"github.com/eth2030/evmcore/stack"
)

// Every handler below pops its operands from the top of stk, computes a
// result, and pushes it back; stack depth bookkeeping (minStack/maxStack)
// is validated by the interpreter loop before execute is called, so
// handlers never check for underflow themselves.

func opStop(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return nil, nil
}

func binOp(f func(z, x, y *uint256.Int) *uint256.Int) executionFunc {
	return func(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
		y, _ := stk.Pop()
		x, _ := stk.Peek(0)
		f(x, x, y)
		return nil, nil
	}
}

var opAdd = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.Add(x, y) })
var opMul = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.Mul(x, y) })
var opSub = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.Sub(x, y) })
var opDiv = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.Div(x, y) })
var opSdiv = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.SDiv(x, y) })
var opMod = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.Mod(x, y) })
var opSmod = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.SMod(x, y) })
var opAnd = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.And(x, y) })
var opOr = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.Or(x, y) })
var opXor = binOp(func(z, x, y *uint256.Int) *uint256.Int { return z.Xor(x, y) })

func opAddmod(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	z, _ := stk.Pop()
	y, _ := stk.Pop()
	x, _ := stk.Peek(0)
	x.AddMod(x, y, z)
	return nil, nil
}

func opMulmod(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	z, _ := stk.Pop()
	y, _ := stk.Pop()
	x, _ := stk.Peek(0)
	x.MulMod(x, y, z)
	return nil, nil
}

func opExp(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	base, _ := stk.Pop()
	exponent, _ := stk.Peek(0)
	exponent.Exp(base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	back, _ := stk.Pop()
	num, _ := stk.Peek(0)
	num.ExtendSign(num, back)
	return nil, nil
}

func cmpOp(f func(x, y *uint256.Int) bool) executionFunc {
	return func(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
		y, _ := stk.Pop()
		x, _ := stk.Peek(0)
		if f(x, y) {
			x.SetOne()
		} else {
			x.Clear()
		}
		return nil, nil
	}
}

var opLt = cmpOp(func(x, y *uint256.Int) bool { return x.Lt(y) })
var opGt = cmpOp(func(x, y *uint256.Int) bool { return x.Gt(y) })
var opSlt = cmpOp(func(x, y *uint256.Int) bool { return x.Slt(y) })
var opSgt = cmpOp(func(x, y *uint256.Int) bool { return x.Sgt(y) })
var opEq = cmpOp(func(x, y *uint256.Int) bool { return x.Eq(y) })

func opIsZero(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	x, _ := stk.Peek(0)
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opNot(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	x, _ := stk.Peek(0)
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	th, _ := stk.Pop()
	val, _ := stk.Peek(0)
	val.Byte(th)
	return nil, nil
}

func opSHL(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	shift, _ := stk.Pop()
	val, _ := stk.Peek(0)
	if shift.LtUint64(256) {
		val.Lsh(val, uint(shift.Uint64()))
	} else {
		val.Clear()
	}
	return nil, nil
}

func opSHR(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	shift, _ := stk.Pop()
	val, _ := stk.Peek(0)
	if shift.LtUint64(256) {
		val.Rsh(val, uint(shift.Uint64()))
	} else {
		val.Clear()
	}
	return nil, nil
}

func opSAR(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	shift, _ := stk.Pop()
	val, _ := stk.Peek(0)
	if shift.GtUint64(256) {
		if val.Sign() >= 0 {
			val.Clear()
		} else {
			val.SetAllOne()
		}
		return nil, nil
	}
	val.SRsh(val, uint(shift.Uint64()))
	return nil, nil
}

func opKeccak256(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	offset, _ := stk.Pop()
	size, _ := stk.Peek(0)
	data := mem.GetSlice(offset.Uint64(), size.Uint64())
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	size.SetBytes(h.Sum(nil))
	return nil, nil
}

func opAddress(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, c.Address.U256())
}

func opBalance(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	a, _ := stk.Peek(0)
	addr := evmtypes.AddressFromU256(a)
	a.Set(interp.Host.Balance(addr))
	return nil, nil
}

func opOrigin(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, interp.Env.Tx.Origin.U256())
}

func opCaller(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, c.Caller.U256())
}

func opCallValue(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).Set(c.Value))
}

func opCalldataLoad(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	x, _ := stk.Peek(0)
	off := uint64OrMax(x)
	x.SetBytes(getDataPadded(c.Input, off, 32))
	return nil, nil
}

func getDataPadded(data []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if offset >= uint64(len(data)) {
		return out
	}
	end := offset + size
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(out, data[offset:end])
	return out
}

func opCalldataSize(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(uint64(len(c.Input))))
}

func opCalldataCopy(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	destOff, _ := stk.Pop()
	srcOff, _ := stk.Pop()
	size, _ := stk.Pop()
	return nil, copyToMemory(mem, c.Input, destOff, srcOff, size)
}

func copyToMemory(mem *memory.Memory, src []byte, destOff, srcOff, size *uint256.Int) error {
	sz := uint64OrMax(size)
	if sz == 0 {
		return nil
	}
	dOff := uint64OrMax(destOff)
	sOff := uint64OrMax(srcOff)
	mem.Set(dOff, sz, getDataPadded(src, sOff, sz))
	return nil
}

func opCodeSize(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(uint64(c.Code.Len())))
}

func opCodeCopy(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	destOff, _ := stk.Pop()
	srcOff, _ := stk.Pop()
	size, _ := stk.Pop()
	return nil, copyToMemory(mem, c.Code.Raw(), destOff, srcOff, size)
}

func opGasPrice(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).Set(interp.Env.Tx.GasPrice))
}

func opExtcodesize(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	a, _ := stk.Peek(0)
	addr := evmtypes.AddressFromU256(a)
	a.SetUint64(interp.Host.CodeSize(addr))
	return nil, nil
}

func opExtcodecopy(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	a, _ := stk.Pop()
	destOff, _ := stk.Pop()
	srcOff, _ := stk.Pop()
	size, _ := stk.Pop()
	addr := evmtypes.AddressFromU256(a)
	code := interp.Host.Code(addr)
	return nil, copyToMemory(mem, code, destOff, srcOff, size)
}

func opReturndataSize(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(interp.ReturnData.Size()))
}

func opReturndataCopy(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	destOff, _ := stk.Pop()
	srcOff, _ := stk.Pop()
	size, _ := stk.Pop()
	data, err := interp.ReturnData.Slice(uint64OrMax(srcOff), uint64OrMax(size))
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		mem.Set(uint64OrMax(destOff), uint64(len(data)), data)
	}
	return nil, nil
}

func opExtcodehash(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	a, _ := stk.Peek(0)
	addr := evmtypes.AddressFromU256(a)
	hash := interp.Host.CodeHash(addr)
	a.SetBytes(hash[:])
	return nil, nil
}

func opBlockhash(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	num, _ := stk.Peek(0)
	if !num.IsUint64() {
		num.Clear()
		return nil, nil
	}
	h := interp.Host.BlockHash(num.Uint64())
	num.SetBytes(h[:])
	return nil, nil
}

func opCoinbase(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, interp.Env.Block.Coinbase.U256())
}

func opTimestamp(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(interp.Env.Block.Timestamp))
}

func opNumber(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(interp.Env.Block.Number))
}

func opPrevRandao(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, interp.Env.Block.PrevRandao.U256())
}

func opGasLimit(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(interp.Env.Block.GasLimit))
}

func opChainID(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(interp.Spec.ChainID))
}

func opSelfBalance(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, interp.Host.Balance(c.Address))
}

func opBaseFee(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).Set(interp.Env.Block.BaseFee))
}

func opBlobHash(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	idx, _ := stk.Peek(0)
	if !idx.IsUint64() || idx.Uint64() >= uint64(len(interp.Env.Tx.BlobHashes)) {
		idx.Clear()
		return nil, nil
	}
	h := interp.Env.Tx.BlobHashes[idx.Uint64()]
	idx.SetBytes(h[:])
	return nil, nil
}

func opBlobBaseFee(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).Set(interp.Env.Block.BlobBaseFee))
}

func opPop(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	_, err := stk.Pop()
	return nil, err
}

func opMload(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	off, _ := stk.Peek(0)
	o := off.Uint64()
	off.SetBytes(mem.GetSlice(o, 32))
	return nil, nil
}

func opMstore(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	off, _ := stk.Pop()
	val, _ := stk.Pop()
	mem.MStore(off.Uint64(), val)
	return nil, nil
}

func opMstore8(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	off, _ := stk.Pop()
	val, _ := stk.Pop()
	mem.MStore8(off.Uint64(), byte(val.Uint64()))
	return nil, nil
}

func opSload(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	key, _ := stk.Peek(0)
	val := interp.Host.SLoad(c.Address, key)
	key.Set(val)
	return nil, nil
}

func opSstore(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	if c.ReadOnly {
		return nil, ErrWriteProtection
	}
	key, _ := stk.Pop()
	val, _ := stk.Pop()
	interp.Host.SStore(c.Address, key, val)
	return nil, nil
}

func opJump(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	dest, _ := stk.Pop()
	if !c.ValidJumpdest(dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	dest, _ := stk.Pop()
	cond, _ := stk.Pop()
	if cond.IsZero() {
		*pc++
		return nil, nil
	}
	if !c.ValidJumpdest(dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil, nil
}

func opPc(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(*pc))
}

func opMsize(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(uint64(mem.Len())))
}

func opGasOp(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int).SetUint64(c.Gas.Remaining()))
}

func opJumpdest(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return nil, nil
}

func opTload(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	key, _ := stk.Peek(0)
	val := interp.Host.TLoad(c.Address, key)
	key.Set(val)
	return nil, nil
}

func opTstore(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	if c.ReadOnly {
		return nil, ErrWriteProtection
	}
	key, _ := stk.Pop()
	val, _ := stk.Pop()
	interp.Host.TStore(c.Address, key, val)
	return nil, nil
}

func opMcopy(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	dst, _ := stk.Pop()
	src, _ := stk.Pop()
	size, _ := stk.Pop()
	sz := uint64OrMax(size)
	if sz == 0 {
		return nil, nil
	}
	data := mem.GetSlice(uint64OrMax(src), sz)
	mem.Set(uint64OrMax(dst), sz, data)
	return nil, nil
}

func opPush0(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return push(stk, new(uint256.Int))
}

func push(stk *stack.Stack, v *uint256.Int) ([]byte, error) {
	return nil, stk.Push(v)
}

func makePush(n int) executionFunc {
	return func(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
		start := *pc + 1
		raw := c.Code.Raw()
		end := start + uint64(n)
		if end > uint64(len(raw)) {
			return nil, ErrInvalidPC
		}
		var buf [32]byte
		copy(buf[32-n:], raw[start:end])
		v := new(uint256.Int).SetBytes(buf[32-n:])
		*pc += uint64(n)
		return push(stk, v)
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
		return nil, stk.Dup(n)
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
		return nil, stk.Swap(n)
	}
}

func makeLog(n int) executionFunc {
	return func(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
		if c.ReadOnly {
			return nil, ErrWriteProtection
		}
		offset, _ := stk.Pop()
		size, _ := stk.Pop()
		topics := make([]evmtypes.B256, n)
		for i := 0; i < n; i++ {
			t, _ := stk.Pop()
			topics[i] = evmtypes.U256ToHash(t)
		}
		data := mem.GetSlice(uint64OrMax(offset), uint64OrMax(size))
		interp.Host.Log(c.Address, topics, data)
		return nil, nil
	}
}

func opCreate(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return interp.create(c, mem, stk, false)
}

func opCreate2(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return interp.create(c, mem, stk, true)
}

func opCall(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return interp.call(c, mem, stk, host.KindCall)
}

func opCallCode(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return interp.call(c, mem, stk, host.KindCallCode)
}

func opDelegateCall(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return interp.call(c, mem, stk, host.KindDelegateCall)
}

func opStaticCall(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return interp.call(c, mem, stk, host.KindStaticCall)
}

func opReturn(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	offset, _ := stk.Pop()
	size, _ := stk.Pop()
	return mem.GetSlice(uint64OrMax(offset), uint64OrMax(size)), nil
}

func opRevert(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	offset, _ := stk.Pop()
	size, _ := stk.Pop()
	return mem.GetSlice(uint64OrMax(offset), uint64OrMax(size)), ErrExecutionReverted
}

func opInvalid(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	return nil, ErrInvalidOpcode
}

func opSelfdestruct(pc *uint64, interp *Interpreter, c *Contract, mem *memory.Memory, stk *stack.Stack) ([]byte, error) {
	if c.ReadOnly {
		return nil, ErrWriteProtection
	}
	beneficiary, _ := stk.Pop()
	interp.selfDestruct(c, evmtypes.AddressFromU256(beneficiary))
	return nil, nil
}
