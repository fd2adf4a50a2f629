package vm

import (
	"errors"

	"github.com/eth2030/evmcore/host"
)

var (
	ErrOutOfGas             = errors.New("vm: out of gas")
	ErrStackOverflow        = errors.New("vm: stack overflow")
	ErrStackUnderflow       = errors.New("vm: stack underflow")
	ErrInvalidJump          = errors.New("vm: invalid jump destination")
	ErrInvalidOpcode        = errors.New("vm: invalid opcode")
	ErrWriteProtection      = errors.New("vm: state modification in a static call")
	ErrExecutionReverted    = errors.New("vm: execution reverted")
	ErrMaxCallDepthExceeded = errors.New("vm: max call depth exceeded")
	ErrInvalidPC            = errors.New("vm: program counter out of bounds")
)

// StatusForError maps an interpreter error to the ExecutionStatus the
// caller observes. Errors not listed here (ErrReturnDataOutOfBounds and the
// stack package's own errors among them) fall through to StatusOutOfGas.
func StatusForError(err error) host.ExecutionStatus {
	switch {
	case err == nil:
		return host.StatusSuccess
	case errors.Is(err, ErrExecutionReverted):
		return host.StatusRevert
	case errors.Is(err, ErrOutOfGas):
		return host.StatusOutOfGas
	case errors.Is(err, ErrStackOverflow):
		return host.StatusStackOverflow
	case errors.Is(err, ErrStackUnderflow):
		return host.StatusStackUnderflow
	case errors.Is(err, ErrInvalidOpcode):
		return host.StatusInvalidOpcode
	case errors.Is(err, ErrInvalidJump):
		return host.StatusInvalidJump
	case errors.Is(err, ErrInvalidPC):
		return host.StatusInvalidPC
	case errors.Is(err, ErrMaxCallDepthExceeded):
		return host.StatusCallDepthExceeded
	case errors.Is(err, ErrWriteProtection):
		return host.StatusRevert // a write attempt under a static context reverts; it never consumes all remaining gas
	default:
		return host.StatusOutOfGas
	}
}
