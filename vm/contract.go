package vm

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/bytecode"
	"github.com/eth2030/evmcore/evmtypes"
	"github.com/eth2030/evmcore/gas"
)

// Contract is one frame's execution context: the code it runs, the account
// it runs as, and the gas meter it draws from.
type Contract struct {
	Caller   evmtypes.Address
	Address  evmtypes.Address // the account whose storage SLOAD/SSTORE target
	CodeAddr evmtypes.Address // the account the running code was loaded from (differs from Address under DELEGATECALL/CALLCODE)

	Value *uint256.Int
	Input []byte
	Code  *bytecode.AnalyzedBytecode

	Gas *gas.Meter

	Depth    int
	ReadOnly bool

	// IsCreation marks this frame as executing init code (CREATE/CREATE2),
	// which changes the interpretation of a halting RETURN (the returned
	// bytes become the deployed code rather than the frame's output).
	IsCreation bool

	// CreatedInCurrentTx backs the EIP-6780 SELFDESTRUCT restriction: true
	// only if this account's CREATE/CREATE2 happened earlier in the same
	// transaction.
	CreatedInCurrentTx bool
}

// NewContract builds a frame for running addr's code.
func NewContract(caller, addr evmtypes.Address, value *uint256.Int, gasLimit uint64, maxRefundQuotient uint64) *Contract {
	return &Contract{
		Caller:   caller,
		Address:  addr,
		CodeAddr: addr,
		Value:    value,
		Gas:      gas.NewMeter(gasLimit, maxRefundQuotient),
	}
}

// SetCallCode points the frame at code loaded from a different account,
// for DELEGATECALL (Address stays the caller's, CodeAddr becomes the
// delegate) and CALLCODE.
func (c *Contract) SetCallCode(codeAddr evmtypes.Address, code *bytecode.AnalyzedBytecode) {
	c.CodeAddr = codeAddr
	c.Code = code
}

// At returns the opcode byte at pc, or STOP past the end of code.
func (c *Contract) At(pc uint64) OpCode {
	return OpCode(c.Code.At(pc))
}

// ValidJumpdest reports whether dest is a JUMPDEST not inside a PUSH
// immediate.
func (c *Contract) ValidJumpdest(dest *uint256.Int) bool {
	if !dest.IsUint64() {
		return false
	}
	return c.Code.IsValidJumpdest(dest.Uint64())
}
