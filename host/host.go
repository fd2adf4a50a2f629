// Package host defines the boundary between the interpreter core and
// persistent state: the Host interface the core reads/writes through, the
// CallExecutor callback nested calls dispatch through, and the
// per-transaction Env and AccessList values the interpreter threads
// through every frame.
package host

import (
	"github.com/eth2030/evmcore/evmtypes"
	"github.com/holiman/uint256"
)

// Host is the sole boundary between the core and persistent account/
// storage/log state. Every method is called from exactly one thread of
// control at a time; the core makes no ordering guarantees beyond program
// order of opcodes.
type Host interface {
	// Balance returns the account's wei balance, zero for a nonexistent
	// account.
	Balance(addr evmtypes.Address) *uint256.Int

	// AccountExists reports whether addr is a non-empty account (nonzero
	// nonce, nonempty code, or nonzero balance), the EIP-161 test used to
	// decide whether CALL/SELFDESTRUCT owe the new-account gas surcharge.
	AccountExists(addr evmtypes.Address) bool

	// Code returns a copy of the account's code, empty for an EOA or
	// nonexistent account. The caller owns the returned slice.
	Code(addr evmtypes.Address) []byte

	// CodeHash returns the keccak256 of the account's code, zero for a
	// nonexistent or codeless account.
	CodeHash(addr evmtypes.Address) evmtypes.B256

	// CodeSize returns len(Code(addr)) without requiring a copy.
	CodeSize(addr evmtypes.Address) uint64

	// BlockHash returns the hash of the given block number, or zero if it
	// is at or beyond the current block, more than 256 blocks behind, or
	// (EIP-2935) outside the historical window the host retains.
	BlockHash(number uint64) evmtypes.B256

	// SLoad returns the current value of a storage slot.
	SLoad(addr evmtypes.Address, key *uint256.Int) *uint256.Int

	// OriginalValue returns the slot's value as of the start of the
	// enclosing transaction, needed by the net-metered SSTORE gas formula
	// to distinguish a slot's first write in a transaction from a later
	// dirty write.
	OriginalValue(addr evmtypes.Address, key *uint256.Int) *uint256.Int

	// SStore writes a storage slot.
	SStore(addr evmtypes.Address, key, value *uint256.Int)

	// TLoad/TStore implement EIP-1153 transient storage. The host must
	// clear all transient storage at the end of the transaction.
	TLoad(addr evmtypes.Address, key *uint256.Int) *uint256.Int
	TStore(addr evmtypes.Address, key, value *uint256.Int)

	// Nonce/SetNonce back CREATE's nonce-derived address and the nonce
	// bump every contract creation applies to the creating account.
	Nonce(addr evmtypes.Address) uint64
	SetNonce(addr evmtypes.Address, nonce uint64)

	// NewContractAddress and NewContractAddress2 compute the deployment
	// address for CREATE (keccak256(rlp([sender, nonce]))) and CREATE2
	// (keccak256(0xff ++ sender ++ salt ++ keccak256(initcode))).
	NewContractAddress(caller evmtypes.Address, nonce uint64) evmtypes.Address
	NewContractAddress2(caller evmtypes.Address, salt evmtypes.B256, initCodeHash evmtypes.B256) evmtypes.Address

	// CreateAccount installs code at addr as part of a CREATE/CREATE2,
	// after the EIP-684/EIP-7610 collision check and the value transfer
	// from caller have already succeeded. It must not be called for a
	// colliding address.
	CreateAccount(addr evmtypes.Address, code []byte)

	// HasCollision reports whether addr is unusable as a fresh CREATE/
	// CREATE2 target: an existing nonce, code, or (EIP-7610) storage.
	HasCollision(addr evmtypes.Address) bool

	// Transfer moves value from one account's balance to another's,
	// failing if from's balance is insufficient.
	Transfer(from, to evmtypes.Address, value *uint256.Int) error

	// SelfDestruct transfers addr's entire balance to beneficiary. Full
	// account destruction additionally happens only when createdInCurrentTx
	// is true (EIP-6780); otherwise only the balance moves.
	SelfDestruct(addr, beneficiary evmtypes.Address, createdInCurrentTx bool)

	// Log appends a log record. topics has 0 to 4 entries.
	Log(addr evmtypes.Address, topics []evmtypes.B256, data []byte)
}

// CallKind identifies which call-family opcode produced a CallInputs.
type CallKind int

const (
	KindCall CallKind = iota
	KindDelegateCall
	KindStaticCall
	KindCallCode
	KindCreate
	KindCreate2
)

// CallInputs describes a nested call dispatched by CALL/CALLCODE/
// DELEGATECALL/STATICCALL. CREATE/CREATE2 are handled separately (address
// computation and the collision check happen before any code runs), not
// through this type.
type CallInputs struct {
	Kind   CallKind
	Target evmtypes.Address // the account whose code runs
	Caller evmtypes.Address // msg.sender as seen by the nested frame

	// StorageContext is the account whose storage the nested frame reads
	// and writes: Target itself for CALL/STATICCALL, but the calling
	// contract's own address for CALLCODE/DELEGATECALL, which keep the
	// caller's storage context while running Target's code.
	StorageContext evmtypes.Address

	Value         *uint256.Int
	Input         []byte
	GasLimit      uint64
	TransferValue bool
	ReadOnly      bool
}

// CallResult is what a nested call or creation returns to the handler that
// dispatched it.
type CallResult struct {
	Status   ExecutionStatus
	GasUsed  uint64
	GasRefund uint64
	Output   []byte
}

// CallExecutor is invoked by CALL/DELEGATECALL/STATICCALL/CALLCODE
// handlers to run a nested frame. CREATE/CREATE2 do not go through it: the
// interpreter runs their init code on its own create path. The interpreter itself implements
// this interface for recursive dispatch; tests may supply a stub
// implementation to isolate opcode-level behaviour from actual nested
// execution.
type CallExecutor interface {
	Call(in CallInputs) CallResult
}
