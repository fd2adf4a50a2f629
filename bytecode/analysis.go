// Package bytecode performs the one-pass analysis every contract's raw code
// undergoes before execution: marking valid JUMPDEST positions and
// detecting the EIP-7702 delegation-stub prefix.
package bytecode

import "github.com/bits-and-blooms/bitset"

const (
	opPush1    = 0x60
	opPush32   = 0x7f
	opJumpdest = 0x5b

	// The EIP-7702 delegation marker: 0xEF 0x01 0x00 followed by a
	// 20-byte delegation target address (23 bytes total).
	delegationMagic   = 0xef
	delegationVersion = 0x01
	delegationType    = 0x00
	delegationLength  = 23
)

// AnalyzedBytecode is the immutable result of analysing a contract's raw
// code: the code itself plus a bitset of valid JUMPDEST byte offsets.
type AnalyzedBytecode struct {
	raw            []byte
	validJumpdests *bitset.BitSet
	isDelegation   bool
	delegationAddr [20]byte
}

// Analyze performs the one-pass scan over raw: PUSH1..PUSH32 (0x60..0x7F)
// skip their immediate bytes (clamped at the end of code), and any
// JUMPDEST (0x5B) not inside a skipped immediate window is marked valid.
// It also detects the EIP-7702 delegation-stub format.
func Analyze(raw []byte) *AnalyzedBytecode {
	ab := &AnalyzedBytecode{
		raw:            raw,
		validJumpdests: bitset.New(uint(len(raw))),
	}

	if isDelegationStub(raw) {
		ab.isDelegation = true
		copy(ab.delegationAddr[:], raw[3:delegationLength])
		return ab
	}

	for pc := 0; pc < len(raw); {
		op := raw[pc]
		switch {
		case op == opJumpdest:
			ab.validJumpdests.Set(uint(pc))
			pc++
		case op >= opPush1 && op <= opPush32:
			n := int(op-opPush1) + 1
			pc += 1 + n
		default:
			pc++
		}
	}
	return ab
}

// isDelegationStub reports whether raw is exactly the EIP-7702 delegation
// marker: 0xEF 0x01 0x00 followed by a 20-byte address.
func isDelegationStub(raw []byte) bool {
	return len(raw) == delegationLength &&
		raw[0] == delegationMagic &&
		raw[1] == delegationVersion &&
		raw[2] == delegationType
}

// Raw returns the underlying bytecode.
func (ab *AnalyzedBytecode) Raw() []byte { return ab.raw }

// Len returns the length of the underlying bytecode.
func (ab *AnalyzedBytecode) Len() int { return len(ab.raw) }

// IsValidJumpdest reports whether pc is a JUMPDEST not inside a PUSH
// immediate window.
func (ab *AnalyzedBytecode) IsValidJumpdest(pc uint64) bool {
	if pc >= uint64(len(ab.raw)) {
		return false
	}
	return ab.validJumpdests.Test(uint(pc))
}

// IsDelegation reports whether this code is an EIP-7702 delegation stub.
// Analyze only tags the stub and records DelegationTarget; it marks no
// JUMPDESTs. The vm package does not resolve the target: a stub reached by
// a call runs as ordinary code and halts on its first byte, 0xEF, which
// has no jump-table entry.
func (ab *AnalyzedBytecode) IsDelegation() bool { return ab.isDelegation }

// DelegationTarget returns the 20-byte address a delegation stub points
// to. Only meaningful when IsDelegation() is true.
func (ab *AnalyzedBytecode) DelegationTarget() [20]byte { return ab.delegationAddr }

// At returns the opcode byte at pc, or 0 (STOP) if pc is at or past the end
// of code — the EVM convention that falling off the end of code behaves as
// an implicit STOP.
func (ab *AnalyzedBytecode) At(pc uint64) byte {
	if pc >= uint64(len(ab.raw)) {
		return 0
	}
	return ab.raw[pc]
}
