package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/bytecode"
	"github.com/eth2030/evmcore/evmtypes"
	"github.com/eth2030/evmcore/gas"
	"github.com/eth2030/evmcore/host"
	"github.com/eth2030/evmcore/log"
	"github.com/eth2030/evmcore/memory"
	"github.com/eth2030/evmcore/metrics"
	"github.com/eth2030/evmcore/params"
	"github.com/eth2030/evmcore/stack"
)

var vmLog = log.Default().Module("vm")

// Interpreter runs one transaction's call tree: it owns the fork-selected
// jump table, the per-transaction Env and AccessList, and dispatches
// CALL-family opcodes back into itself to recurse into nested frames (it
// implements host.CallExecutor). CREATE/CREATE2 are handled by its own
// create method rather than through the CallExecutor path, since address
// computation and the collision check must happen before any code runs.
type Interpreter struct {
	Host       host.Host
	Env        host.Env
	Spec       params.Spec
	Table      JumpTable
	AccessList *host.AccessList
	ReturnData ReturnDataBuffer

	// Metrics is optional; when set, Run records an opcode counter and a
	// gas-used histogram per execution.
	Metrics *metrics.Registry

	depth int
}

// NewInterpreter builds an Interpreter for one transaction, selecting the
// jump table for spec.Fork.
func NewInterpreter(h host.Host, env host.Env, spec params.Spec, al *host.AccessList) *Interpreter {
	return &Interpreter{
		Host:       h,
		Env:        env,
		Spec:       spec,
		Table:      JumpTableForFork(spec.Fork),
		AccessList: al,
	}
}

// Run executes contract's code against input until it halts. It returns
// the RETURN/REVERT payload (nil for any other halt) and the error that
// ended execution: nil for a normal STOP or running off the end of code.
//
// Step order per opcode: fetch -> validate stack depth -> charge constant
// gas -> compute required memory size (no resize yet) -> charge dynamic
// gas, which includes the memory-expansion cost computed against that
// size -> resize memory now that its cost has been paid -> run the
// handler -> halt, or advance pc (the handler itself advances pc for
// JUMP/JUMPI).
func (interp *Interpreter) Run(c *Contract, input []byte) ([]byte, error) {
	c.Input = input
	stk := stack.New()
	mem := memory.New()

	var pc uint64
	for {
		opcode := c.At(pc)
		op := interp.Table[opcode]
		if op == nil {
			return nil, ErrInvalidOpcode
		}

		if stk.Len() < op.minStack {
			return nil, ErrStackUnderflow
		}
		if stk.Len() > op.maxStack {
			return nil, ErrStackOverflow
		}
		if op.writes && c.ReadOnly {
			return nil, ErrWriteProtection
		}

		if err := c.Gas.Consume(op.constantGas); err != nil {
			return nil, ErrOutOfGas
		}

		var memSize uint64
		if op.memorySize != nil {
			size, overflow := op.memorySize(stk)
			if overflow {
				return nil, ErrOutOfGas
			}
			memSize = round(size)
		}

		if op.dynamicGas != nil {
			cost, err := op.dynamicGas(interp, c, stk, mem, memSize)
			if err != nil {
				return nil, err
			}
			if err := c.Gas.Consume(cost); err != nil {
				return nil, ErrOutOfGas
			}
		}

		if memSize > 0 {
			mem.EnsureCapacity(0, memSize)
			c.Gas.UpdateMemoryCost(memSize)
		}

		if interp.Metrics != nil {
			interp.Metrics.Counter("vm_opcodes_executed_total").Inc()
		}

		ret, err := op.execute(&pc, interp, c, mem, stk)
		if err != nil {
			if interp.Metrics != nil {
				interp.Metrics.Histogram("vm_gas_used").Observe(float64(c.Gas.Used()))
			}
			return ret, err
		}
		if op.halts {
			if interp.Metrics != nil {
				interp.Metrics.Histogram("vm_gas_used").Observe(float64(c.Gas.Used()))
			}
			return ret, nil
		}
		if !op.jumps {
			pc++
		}
	}
}

// runFrame builds a Contract for the given storage/code/caller triple and
// runs it, translating the result into a host.CallResult and rolling the
// access list back to snapshot whenever the frame does not succeed (REVERT
// included); the output is kept only for success and revert.
func (interp *Interpreter) runFrame(caller, storageAddr, codeAddr evmtypes.Address, value *uint256.Int, input []byte, gasLimit uint64, readOnly bool, snapshot int) host.CallResult {
	if interp.depth >= gas.MaxCallDepth {
		return host.CallResult{Status: host.StatusCallDepthExceeded}
	}

	vmLog.Frame(interp.depth).Debug("dispatching call frame", "caller", caller, "storage", storageAddr, "code", codeAddr, "gas", gasLimit)

	c := NewContract(caller, storageAddr, value, gasLimit, interp.Spec.MaxRefundQuotient)
	c.Depth = interp.depth
	c.ReadOnly = readOnly

	code := bytecode.Analyze(interp.Host.Code(codeAddr))
	c.SetCallCode(codeAddr, code)

	interp.depth++
	out, err := interp.Run(c, input)
	interp.depth--

	status := StatusForError(err)
	if status == host.StatusOutOfGas && interp.depth == 0 {
		vmLog.Warn("top-level execution ran out of gas", "address", storageAddr, "gas", gasLimit)
	}
	if interp.depth == 0 {
		vmLog.Debug("transaction warm-address set", "addresses", interp.AccessList.WarmAddressSet().Cardinality())
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

// nonNegative floors a frame's raw refund counter at zero; only the final
// capping against used/MaxRefundQuotient happens once, at the outermost
// transaction level.
func nonNegative(r int64) uint64 {
	if r <= 0 {
		return 0
	}
	return uint64(r)
}

// Call implements host.CallExecutor, dispatching CALL/CALLCODE/
// DELEGATECALL/STATICCALL's nested frame. The caller (the opcode handler
// in calls.go) has already resolved StorageContext/Caller/Value per kind.
func (interp *Interpreter) Call(in host.CallInputs) host.CallResult {
	snapshot := interp.AccessList.Snapshot()
	return interp.runFrame(in.Caller, in.StorageContext, in.Target, in.Value, in.Input, in.GasLimit, in.ReadOnly, snapshot)
}
