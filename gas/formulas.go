package gas

import "github.com/holiman/uint256"

// MemoryGasCost returns the total (non-incremental) cost of memory sized
// memSize bytes: ⌈memSize/32⌉²/512 + 3·⌈memSize/32⌉. Returns
// math.MaxUint64 for any size beyond 181,000 words, well before the
// quadratic term could overflow; the caller must treat that as an
// immediate OutOfGas.
func MemoryGasCost(memSize uint64) uint64 {
	if memSize == 0 {
		return 0
	}
	words := toWordSize(memSize)
	// words*words overflows uint64 once words exceeds ~4.29e9; 181,000
	// words (5.8MB) already costs ~64.5 million gas, far past any
	// practical gas limit, so treating anything beyond that as
	// "unaffordable" is safe and avoids the overflow check on every call.
	const maxAffordableWords = 181_000
	if words > maxAffordableWords {
		return ^uint64(0)
	}
	linear := words * MemoryWord
	quadratic := words * words / 512
	return linear + quadratic
}

// MemoryExpansionGas returns the incremental cost of growing memory from
// oldSize to newSize, i.e. MemoryGasCost(newSize) - MemoryGasCost(oldSize).
// Returns 0 if newSize does not exceed oldSize (re-touching already-paid-for
// memory is free).
func MemoryExpansionGas(oldSize, newSize uint64) uint64 {
	if newSize <= oldSize {
		return 0
	}
	return MemoryGasCost(newSize) - MemoryGasCost(oldSize)
}

// CallGas applies the EIP-150 63/64 rule: the caller keeps 1/64th of its
// remaining gas, and the amount forwarded is capped at the remainder even
// if more was requested.
func CallGas(availableGas, requestedGas uint64) uint64 {
	maxGas := availableGas - availableGas/CallGasFraction
	if requestedGas > maxGas {
		return maxGas
	}
	return requestedGas
}

// SstoreGas computes the EIP-2200/EIP-2929/EIP-3529 net-metered gas cost and
// refund delta for an SSTORE, given the slot's original value (at
// transaction start), current value (before this SSTORE), and new value,
// plus whether the slot was cold before this access. setGas (20000) and
// resetGas (5000) are fork-invariant since Istanbul; coldSloadCost is 0
// pre-Berlin and ColdSloadCost (2100) from Berlin on; warmGas is the
// per-fork "already warm" read price — Istanbul's flat SLOAD cost (800)
// pre-Berlin, WarmStorageReadCost (100) from Berlin on. Mirrors go-ethereum's
// gasSStoreEIP2929, which subsumes EIP-2200 when coldSloadCost is 0.
func SstoreGas(original, current, newVal *uint256.Int, cold bool, setGas, resetGas, coldSloadCost, warmGas, clearsRefund uint64) (consumed uint64, refund int64) {
	surcharge := uint64(0)
	if cold {
		surcharge = coldSloadCost
	}

	if current.Eq(newVal) {
		return surcharge + warmGas, 0
	}

	if original.Eq(current) {
		if original.IsZero() {
			return surcharge + setGas, 0
		}
		consumed = surcharge + resetGas - coldSloadCost
		if newVal.IsZero() {
			refund = int64(clearsRefund)
		}
		return consumed, refund
	}

	// Dirty slot: already modified earlier in this transaction.
	if !original.IsZero() {
		if current.IsZero() && !newVal.IsZero() {
			refund -= int64(clearsRefund)
		} else if !current.IsZero() && newVal.IsZero() {
			refund += int64(clearsRefund)
		}
	}
	if original.Eq(newVal) {
		if original.IsZero() {
			refund += int64(setGas) - int64(warmGas)
		} else {
			refund += int64(resetGas) - int64(coldSloadCost) - int64(warmGas)
		}
	}
	return surcharge + warmGas, refund
}

// SstoreGasLegacy computes the pre-Istanbul (no net metering) SSTORE cost
// and refund: SstoreSet (zero -> non-zero) or SstoreReset otherwise, with a
// flat clear refund when a non-zero slot is zeroed.
func SstoreGasLegacy(current, newVal *uint256.Int) (consumed uint64, refund int64) {
	if current.IsZero() && !newVal.IsZero() {
		return SstoreSet, 0
	}
	if !current.IsZero() && newVal.IsZero() {
		return SstoreReset, int64(SstoreClearsRefundPre)
	}
	return SstoreReset, 0
}

// LogGas returns GasLog + numTopics*GasLogTopic + dataSize*GasLogData.
func LogGas(numTopics, dataSize uint64) uint64 {
	g := safeAdd(LogBase, safeMul(numTopics, LogTopic))
	return safeAdd(g, safeMul(dataSize, LogData))
}

// Keccak256Gas returns GasKeccak256 + ceil(dataSize/32)*GasKeccak256Word.
func Keccak256Gas(dataSize uint64) uint64 {
	words := toWordSize(dataSize)
	return safeAdd(Keccak256, safeMul(words, Keccak256Word))
}

// ExpGas returns perByteCost * byteLength(exponent); perByteCost is 10
// pre-Spurious-Dragon and 50 from Spurious Dragon onward (the EXP opcode's
// own base cost, Ghigh, is charged separately as the instruction's static
// cost).
func ExpGas(exponent *uint256.Int, perByteCost uint64) uint64 {
	if exponent.IsZero() {
		return 0
	}
	byteLen := uint64((exponent.BitLen() + 7) / 8)
	return safeMul(perByteCost, byteLen)
}

// CopyGas returns GasCopy * ceil(size/32), the shared formula for
// CALLDATACOPY, CODECOPY, EXTCODECOPY, RETURNDATACOPY and MCOPY's
// per-word component.
func CopyGas(size uint64) uint64 {
	return safeMul(Copy, toWordSize(size))
}
