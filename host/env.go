package host

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/evmtypes"
)

// BlockEnv is the subset of block header fields visible to the running
// contract, through COINBASE, TIMESTAMP, NUMBER, DIFFICULTY/PREVRANDAO,
// GASLIMIT, BASEFEE, and BLOBBASEFEE.
type BlockEnv struct {
	Number     uint64
	Timestamp  uint64
	Coinbase   evmtypes.Address
	GasLimit   uint64
	BaseFee    *uint256.Int
	PrevRandao evmtypes.B256
	BlobBaseFee *uint256.Int
}

// TxEnv is the subset of transaction fields visible to the running
// contract, through ORIGIN, GASPRICE, and BLOBHASH.
type TxEnv struct {
	Origin     evmtypes.Address
	GasPrice   *uint256.Int
	BlobHashes []evmtypes.B256
}

// Env bundles the block and transaction context threaded unmodified
// through every frame of one transaction's execution; no opcode ever
// mutates it.
type Env struct {
	Block BlockEnv
	Tx    TxEnv
}
