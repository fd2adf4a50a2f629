// frame.go holds what passes between CALL/CREATE frames: EIP-150 63/64 gas
// forwarding and return-data propagation. The call depth limit
// (gas.MaxCallDepth) is checked in runFrame and create.
package vm

import "github.com/eth2030/evmcore/gas"

// ReturnDataBuffer holds the return data from the most recently completed
// nested call. Per EIP-211 it is visible via RETURNDATASIZE/RETURNDATACOPY
// until the next CALL-family or CREATE-family instruction replaces it.
type ReturnDataBuffer struct {
	data []byte
}

// Set replaces the buffer with a copy of data.
func (rdb *ReturnDataBuffer) Set(data []byte) {
	if len(data) == 0 {
		rdb.data = nil
		return
	}
	rdb.data = append([]byte(nil), data...)
}

// Data returns the current return data. May be nil.
func (rdb *ReturnDataBuffer) Data() []byte { return rdb.data }

// Size returns the length of the current return data.
func (rdb *ReturnDataBuffer) Size() uint64 { return uint64(len(rdb.data)) }

// Slice returns a copy of data[offset:offset+size]. Returns
// ErrReturnDataOutOfBounds if the range exceeds the available data.
func (rdb *ReturnDataBuffer) Slice(offset, size uint64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	end := offset + size
	if end < offset || end > uint64(len(rdb.data)) {
		return nil, ErrReturnDataOutOfBounds
	}
	out := make([]byte, size)
	copy(out, rdb.data[offset:end])
	return out, nil
}

// ErrReturnDataOutOfBounds is returned by RETURNDATACOPY when the
// requested range exceeds the buffered return data.
var ErrReturnDataOutOfBounds = errReturnDataOutOfBounds{}

type errReturnDataOutOfBounds struct{}

func (errReturnDataOutOfBounds) Error() string { return "vm: return data out of bounds" }

// ForwardGas applies the EIP-150 63/64 rule: the caller retains at least
// 1/64 of its remaining gas, and the amount forwarded is capped at the
// remainder even if more was requested. When the call transfers value, the
// callee additionally receives the 2300 gas stipend, which is not deducted
// from the caller.
func ForwardGas(available, requested uint64, transfersValue bool) (childGas, callerDeduction uint64) {
	forwarded := gas.CallGas(available, requested)
	callerDeduction = forwarded
	if transfersValue {
		forwarded += gas.CallStipend
	}
	return forwarded, callerDeduction
}
