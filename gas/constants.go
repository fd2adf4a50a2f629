// Package gas implements gas accounting and the dynamic gas cost formulas
// shared by every hardfork: memory expansion, EXP, SSTORE net metering,
// calldata/log costs, and cold/warm access pricing.
package gas

import "math"

// Static cost tiers, Yellow Paper Appendix G: Gzero=0, Gbase=2, Gverylow=3,
// Glow=5, Gmid=8, Ghigh=10, Gext=20.
const (
	Zero    uint64 = 0
	Base    uint64 = 2
	VeryLow uint64 = 3
	Low     uint64 = 5
	Mid     uint64 = 8
	High    uint64 = 10
	Ext     uint64 = 20

	JumpDest uint64 = 1

	Push0 uint64 = 2

	Keccak256     uint64 = 30
	Keccak256Word uint64 = 6

	MemoryWord uint64 = 3
	Copy       uint64 = 3

	LogBase  uint64 = 375
	LogTopic uint64 = 375
	LogData  uint64 = 8

	// Cold/warm access, EIP-2929 (Berlin+).
	ColdAccountAccessCost uint64 = 2600
	ColdSloadCost         uint64 = 2100
	WarmStorageReadCost   uint64 = 100

	// Flat pre-Berlin SLOAD tiers, by fork.
	SloadFrontier  uint64 = 50
	SloadTangerine uint64 = 200
	SloadIstanbul  uint64 = 800

	// Flat pre-Berlin cold account touch cost (BALANCE, EXTCODESIZE,
	// EXTCODECOPY, EXTCODEHASH, CALL family): 40 before EIP-150, 700 from
	// Tangerine Whistle through Istanbul.
	AccountAccessFrontier  uint64 = 40
	AccountAccessTangerine uint64 = 700

	// SSTORE. SstoreSet and SstoreReset are the raw EIP-2200 base costs and
	// have been fork-invariant since Istanbul; Berlin's apparent "2900"
	// reset price is not a separate constant, it falls out of
	// SstoreReset-ColdSloadCost in gas.SstoreGas's formula.
	SstoreSet             uint64 = 20000
	SstoreReset           uint64 = 5000
	SstoreClearsRefundPre uint64 = 15000 // pre-EIP-3529 clear refund
	SstoreClearsRefund    uint64 = 4800  // EIP-3529 clear refund (London+)

	CallStipend uint64 = 2300

	CreateGas               uint64 = 32000
	CreateDataGas           uint64 = 200 // per deployed code byte
	CallValueTransferGas    uint64 = 9000
	CallNewAccountGas       uint64 = 25000
	CreateBySelfdestructGas uint64 = 25000

	SelfdestructGasFrontier uint64 = 0
	SelfdestructGas         uint64 = 5000 // EIP-150

	// EIP-150, EIP-3860, EIP-1153, EIP-5656, EIP-4844, EIP-7516.
	CallGasFraction uint64 = 64
	InitCodeWordGas uint64 = 2
	TloadGas        uint64 = 100
	TstoreGas       uint64 = 100
	BlobHashGas     uint64 = 3
	BlobBaseFeeGas  uint64 = 2
	McopyBaseGas    uint64 = 3

	// EIP-3529 refund quotient (post-London); pre-London quotient is 2.
	MaxRefundQuotientPreLondon uint64 = 2
	MaxRefundQuotient          uint64 = 5

	MaxCodeSize     int = 24576
	MaxInitCodeSize int = 49152
	MaxCallDepth    int = 1024
)

// toWordSize rounds size up to the next 32-byte word, saturating instead of
// overflowing.
func toWordSize(size uint64) uint64 {
	if size == 0 {
		return 0
	}
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// safeAdd returns a+b, capping at math.MaxUint64 on overflow.
func safeAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// safeMul returns a*b, capping at math.MaxUint64 on overflow.
func safeMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxUint64/b {
		return math.MaxUint64
	}
	return a * b
}
