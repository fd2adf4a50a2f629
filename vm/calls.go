package vm

import (
	"golang.org/x/crypto/sha3"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/bytecode"
	"github.com/eth2030/evmcore/evmtypes"
	"github.com/eth2030/evmcore/gas"
	"github.com/eth2030/evmcore/host"
	"github.com/eth2030/evmcore/memory"
	"github.com/eth2030/evmcore/stack"
)

// call implements CALL/CALLCODE/DELEGATECALL/STATICCALL: it pops the
// shared operand layout (gas, address, [value], argsOffset, argsSize,
// retOffset, retSize), resolves the storage/caller/value triple for kind,
// forwards gas per EIP-150, dispatches the nested frame through
// Interpreter.Call, and copies the result into memory.
func (interp *Interpreter) call(c *Contract, mem *memory.Memory, stk *stack.Stack, kind host.CallKind) ([]byte, error) {
	gasArg, _ := stk.Pop()
	addrArg, _ := stk.Pop()

	var value *uint256.Int
	if kind == host.KindCall || kind == host.KindCallCode {
		value, _ = stk.Pop()
	} else {
		value = new(uint256.Int)
	}
	argsOffset, _ := stk.Pop()
	argsSize, _ := stk.Pop()
	retOffset, _ := stk.Pop()
	retSize, _ := stk.Pop()

	target := evmtypes.AddressFromU256(addrArg)
	input := mem.GetSlice(uint64OrMax(argsOffset), uint64OrMax(argsSize))
	transfersValue := (kind == host.KindCall || kind == host.KindCallCode) && !value.IsZero()

	if transfersValue && c.ReadOnly {
		return nil, ErrWriteProtection
	}

	failure := new(uint256.Int)
	if transfersValue && interp.Host.Balance(c.Address).Lt(value) {
		interp.ReturnData.Set(nil)
		return nil, stk.Push(failure)
	}

	childGas, deduction := ForwardGas(c.Gas.Remaining(), uint64OrMax(gasArg), transfersValue)
	if err := c.Gas.Consume(deduction); err != nil {
		return nil, ErrOutOfGas
	}

	var storageAddr, callerAddr evmtypes.Address
	var callValue *uint256.Int
	readOnly := c.ReadOnly
	switch kind {
	case host.KindCall:
		storageAddr, callerAddr, callValue = target, c.Address, value
	case host.KindCallCode:
		storageAddr, callerAddr, callValue = c.Address, c.Address, value
	case host.KindDelegateCall:
		storageAddr, callerAddr, callValue = c.Address, c.Caller, new(uint256.Int).Set(c.Value)
	case host.KindStaticCall:
		storageAddr, callerAddr, callValue = target, c.Address, new(uint256.Int)
		readOnly = true
	}

	if transfersValue {
		if err := interp.Host.Transfer(c.Address, target, value); err != nil {
			c.Gas.GiveBack(childGas)
			interp.ReturnData.Set(nil)
			return nil, stk.Push(failure)
		}
	}

	result := interp.Call(host.CallInputs{
		Kind:           kind,
		Target:         target,
		Caller:         callerAddr,
		StorageContext: storageAddr,
		Value:          callValue,
		Input:          input,
		GasLimit:       childGas,
		TransferValue:  transfersValue,
		ReadOnly:       readOnly,
	})

	c.Gas.GiveBack(childGas - result.GasUsed)

	success := new(uint256.Int)
	if result.Status == host.StatusSuccess {
		c.Gas.AdjustRefund(int64(result.GasRefund))
		success.SetOne()
	}

	interp.ReturnData.Set(result.Output)
	if result.Status.HasReturnData() {
		copyReturnData(mem, result.Output, retOffset, retSize)
	}
	return nil, stk.Push(success)
}

func copyReturnData(mem *memory.Memory, output []byte, retOffset, retSize *uint256.Int) {
	sz := uint64OrMax(retSize)
	if sz > uint64(len(output)) {
		sz = uint64(len(output))
	}
	if sz == 0 {
		return
	}
	mem.Set(uint64OrMax(retOffset), sz, output[:sz])
}

// create implements CREATE/CREATE2: computes the deployment address,
// checks for an EIP-684/EIP-7610 collision, transfers value, runs the
// init code as its own frame, and (on success) installs the returned
// bytes as the new account's code after charging the per-byte deposit
// cost and the EIP-170 size limit.
func (interp *Interpreter) create(c *Contract, mem *memory.Memory, stk *stack.Stack, isCreate2 bool) ([]byte, error) {
	if c.ReadOnly {
		return nil, ErrWriteProtection
	}
	value, _ := stk.Pop()
	offset, _ := stk.Pop()
	size, _ := stk.Pop()
	var salt *uint256.Int
	if isCreate2 {
		salt, _ = stk.Pop()
	}

	initCode := mem.GetSlice(uint64OrMax(offset), uint64OrMax(size))

	if interp.Spec.MaxInitCodeSize > 0 && len(initCode) > interp.Spec.MaxInitCodeSize {
		return nil, ErrOutOfGas
	}

	failPush := func() ([]byte, error) {
		interp.ReturnData.Set(nil)
		return nil, stk.Push(new(uint256.Int))
	}

	if interp.depth >= gas.MaxCallDepth {
		return failPush()
	}
	if interp.Host.Balance(c.Address).Lt(value) {
		return failPush()
	}

	nonce := interp.Host.Nonce(c.Address)
	var addr evmtypes.Address
	if isCreate2 {
		h := sha3.NewLegacyKeccak256()
		h.Write(initCode)
		var codeHash evmtypes.B256
		copy(codeHash[:], h.Sum(nil))
		addr = interp.Host.NewContractAddress2(c.Address, evmtypes.U256ToHash(salt), codeHash)
	} else {
		addr = interp.Host.NewContractAddress(c.Address, nonce)
	}
	interp.Host.SetNonce(c.Address, nonce+1)

	if interp.Host.HasCollision(addr) {
		return failPush()
	}

	snapshot := interp.AccessList.Snapshot()
	interp.AccessList.WarmAccount(addr)

	if err := interp.Host.Transfer(c.Address, addr, value); err != nil {
		interp.AccessList.RevertToSnapshot(snapshot)
		return failPush()
	}

	childGas, _ := ForwardGas(c.Gas.Remaining(), c.Gas.Remaining(), false)
	if err := c.Gas.Consume(childGas); err != nil {
		return nil, ErrOutOfGas
	}

	vmLog.Frame(interp.depth).Debug("dispatching create frame", "caller", c.Address, "address", addr, "gas", childGas)
	result := interp.runCreateFrame(c.Address, addr, value, initCode, childGas, snapshot)
	c.Gas.GiveBack(childGas - result.GasUsed)

	pushed := new(uint256.Int)
	if result.Status == host.StatusSuccess {
		c.Gas.AdjustRefund(int64(result.GasRefund))
		pushed = addr.U256()
	}
	interp.ReturnData.Set(result.Output)
	return nil, stk.Push(pushed)
}

func (interp *Interpreter) runCreateFrame(caller, addr evmtypes.Address, value *uint256.Int, initCode []byte, gasLimit uint64, snapshot int) host.CallResult {
	c := NewContract(caller, addr, value, gasLimit, interp.Spec.MaxRefundQuotient)
	c.Depth = interp.depth
	c.IsCreation = true
	c.CreatedInCurrentTx = true
	c.SetCallCode(addr, bytecode.Analyze(initCode))

	interp.depth++
	out, err := interp.Run(c, nil)
	interp.depth--

	status := StatusForError(err)
	if err == nil {
		switch {
		case interp.Spec.MaxCodeSize > 0 && len(out) > interp.Spec.MaxCodeSize:
			status, err = host.StatusOutOfGas, ErrOutOfGas
		case c.Gas.Consume(uint64(len(out))*gas.CreateDataGas) != nil:
			status, err = host.StatusOutOfGas, ErrOutOfGas
		default:
			interp.Host.CreateAccount(addr, out)
		}
	}
	if status != host.StatusSuccess {
		interp.AccessList.RevertToSnapshot(snapshot)
	}
	if err != nil && status != host.StatusRevert {
		out = nil
	}

	return host.CallResult{
		Status:    status,
		GasUsed:   c.Gas.Used(),
		GasRefund: nonNegative(c.Gas.RefundedRaw()),
		Output:    out,
	}
}

// selfDestruct implements SELFDESTRUCT's state effect. Full account
// destruction (code and storage purge, not just the balance sweep) is
// restricted by EIP-6780 to accounts created earlier in the same
// transaction; pre-Cancun every SELFDESTRUCT fully destroys its account,
// and earns the (pre-London) refund.
func (interp *Interpreter) selfDestruct(c *Contract, beneficiary evmtypes.Address) {
	fullDestroy := !interp.Spec.HasEIP6780 || c.CreatedInCurrentTx
	interp.Host.SelfDestruct(c.Address, beneficiary, fullDestroy)
	if fullDestroy && interp.Spec.SelfdestructRefund > 0 {
		c.Gas.Refund(interp.Spec.SelfdestructRefund)
	}
}
