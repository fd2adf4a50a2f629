package params

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/gas"
)

// Spec is an immutable record of every fork-varying parameter the
// interpreter and gas tables consult. It is created once per execution and
// never mutated afterward. Later forks are derived from earlier ones by
// structural override (each fork's builder, e.g. IstanbulSpec, calls the
// previous fork's builder and overrides only the fields that changed),
// mirroring the jump table's own fork-chain
// construction.
type Spec struct {
	Fork Fork

	MaxRefundQuotient      uint64
	SstoreClearsSchedule   uint64
	SelfdestructRefund     uint64
	ColdSloadCost          uint64
	ColdAccountAccessCost  uint64
	WarmStorageReadCost    uint64
	SstoreSetGas           uint64
	SstoreResetGas         uint64
	SloadGas               uint64
	AccountAccessCost      uint64 // flat pre-Berlin touch cost for BALANCE/EXTCODE*/CALL family
	CallStipend            uint64
	MaxInitCodeSize        int // 0 means "no limit" (pre-EIP-3860)
	InitCodeWordCost       uint64
	MaxCodeSize            int
	ExpPerByteCost         uint64

	// Feature flags.
	HasPush0                  bool
	HasBaseFee                bool
	HasPrevRandao             bool
	HasTstore                 bool
	HasMcopy                  bool
	HasBlobOpcodes            bool
	HasBlobGas                bool
	HasEIP7702                bool
	HasBLSPrecompiles         bool
	HasHistoricalBlockHashes  bool
	HasSelfdestruct           bool
	HasEIP2929                bool // cold/warm access-list accounting
	HasNetMeteredSstore       bool // EIP-2200+ SSTORE regime
	HasEIP158                 bool // empty-account cleanup on zero-value call
	HasEIP6780                bool // SELFDESTRUCT restricted to same-tx creation
	HasStorageCollisionCheck  bool // EIP-7610 CREATE collision extension

	TargetBlobsPerBlock uint64
	MaxBlobsPerBlock    uint64
	ChainID             uint64
}

// FrontierSpec returns the Spec for the Frontier fork, the base from which
// every later fork is derived by override.
func FrontierSpec() Spec {
	return Spec{
		Fork:                  Frontier,
		MaxRefundQuotient:     gas.MaxRefundQuotientPreLondon,
		SstoreClearsSchedule:  gas.SstoreClearsRefundPre,
		SelfdestructRefund:    24000,
		ColdSloadCost:         0,
		ColdAccountAccessCost: 0,
		WarmStorageReadCost:   0,
		SstoreSetGas:          gas.SstoreSet,
		SstoreResetGas:        gas.SstoreReset,
		SloadGas:              gas.SloadFrontier,
		AccountAccessCost:     gas.AccountAccessFrontier,
		CallStipend:           gas.CallStipend,
		MaxInitCodeSize:       0,
		InitCodeWordCost:      0,
		MaxCodeSize:           0, // EIP-170 not yet active
		ExpPerByteCost:        10,
		HasSelfdestruct:       true,
		ChainID:               1,
	}
}

// HomesteadSpec: no gas-table changes relevant to this core (DELEGATECALL
// introduced, which is an opcode-availability concern handled by the jump
// table, not a Spec field).
func HomesteadSpec() Spec {
	s := FrontierSpec()
	s.Fork = Homestead
	return s
}

// TangerineWhistleSpec: EIP-150 repriced account-touching opcodes.
func TangerineWhistleSpec() Spec {
	s := HomesteadSpec()
	s.Fork = TangerineWhistle
	s.SloadGas = gas.SloadTangerine
	s.AccountAccessCost = gas.AccountAccessTangerine
	return s
}

// SpuriousDragonSpec: EIP-158 empty-account cleanup, EIP-160 EXP repricing,
// EIP-170 max code size.
func SpuriousDragonSpec() Spec {
	s := TangerineWhistleSpec()
	s.Fork = SpuriousDragon
	s.HasEIP158 = true
	s.MaxCodeSize = gas.MaxCodeSize
	s.ExpPerByteCost = 50
	return s
}

// ByzantiumSpec: no Spec-field changes relevant to this core (REVERT,
// STATICCALL, RETURNDATA* are opcode-availability, not gas-table,
// concerns).
func ByzantiumSpec() Spec {
	s := SpuriousDragonSpec()
	s.Fork = Byzantium
	return s
}

// ConstantinopleSpec: EIP-145/1014/1052 are opcode-availability changes.
func ConstantinopleSpec() Spec {
	s := ByzantiumSpec()
	s.Fork = Constantinople
	return s
}

// IstanbulSpec: EIP-2200 net-metered SSTORE, EIP-1884 repriced SLOAD.
// AccountAccessCost (BALANCE/EXTCODEHASH) keeps its Tangerine Whistle value.
func IstanbulSpec() Spec {
	s := ConstantinopleSpec()
	s.Fork = Istanbul
	s.HasNetMeteredSstore = true
	s.SloadGas = gas.SloadIstanbul
	return s
}

// BerlinSpec: EIP-2929 cold/warm access lists, EIP-2930 access lists.
// SstoreSetGas/SstoreResetGas are unchanged: the apparent "2900" Berlin
// reset price is not a separate base cost, it falls out of
// gas.SstoreGas's ResetGas-ColdSloadCost term once ColdSloadCost becomes
// nonzero here.
func BerlinSpec() Spec {
	s := IstanbulSpec()
	s.Fork = Berlin
	s.HasEIP2929 = true
	s.ColdSloadCost = gas.ColdSloadCost
	s.ColdAccountAccessCost = gas.ColdAccountAccessCost
	s.WarmStorageReadCost = gas.WarmStorageReadCost
	s.SloadGas = gas.WarmStorageReadCost
	return s
}

// LondonSpec: EIP-1559 (BASEFEE), EIP-3529 (reduced refunds, removed
// SELFDESTRUCT new-account refund), EIP-3198.
func LondonSpec() Spec {
	s := BerlinSpec()
	s.Fork = London
	s.HasBaseFee = true
	s.MaxRefundQuotient = gas.MaxRefundQuotient
	s.SstoreClearsSchedule = gas.SstoreClearsRefund
	s.SelfdestructRefund = 0
	return s
}

// MergeSpec: EIP-4399, PREVRANDAO replaces DIFFICULTY.
func MergeSpec() Spec {
	s := LondonSpec()
	s.Fork = Merge
	s.HasPrevRandao = true
	return s
}

// ShanghaiSpec: EIP-3855 PUSH0, EIP-3860 initcode size limit/word gas.
func ShanghaiSpec() Spec {
	s := MergeSpec()
	s.Fork = Shanghai
	s.HasPush0 = true
	s.MaxInitCodeSize = gas.MaxInitCodeSize
	s.InitCodeWordCost = gas.InitCodeWordGas
	return s
}

// CancunSpec: EIP-1153 transient storage, EIP-4844 blob opcodes/gas,
// EIP-5656 MCOPY, EIP-6780 restricted SELFDESTRUCT, EIP-7516 BLOBBASEFEE.
func CancunSpec() Spec {
	s := ShanghaiSpec()
	s.Fork = Cancun
	s.HasTstore = true
	s.HasMcopy = true
	s.HasBlobOpcodes = true
	s.HasBlobGas = true
	s.HasEIP6780 = true
	s.TargetBlobsPerBlock = 3
	s.MaxBlobsPerBlock = 6
	return s
}

// PragueSpec: EIP-7702 set-code delegation, EIP-7610 CREATE storage
// collision check extension.
func PragueSpec() Spec {
	s := CancunSpec()
	s.Fork = Prague
	s.HasEIP7702 = true
	s.HasStorageCollisionCheck = true
	s.MaxBlobsPerBlock = 9
	return s
}

// SstoreGas applies this Spec's fork-specific SSTORE pricing parameters to
// gas.SstoreGas, sparing callers from threading SstoreSetGas/SstoreResetGas/
// ColdSloadCost/SloadGas/SstoreClearsSchedule through by hand.
func (s Spec) SstoreGas(original, current, newVal *uint256.Int, cold bool) (consumed uint64, refund int64) {
	return gas.SstoreGas(original, current, newVal, cold, s.SstoreSetGas, s.SstoreResetGas, s.ColdSloadCost, s.SloadGas, s.SstoreClearsSchedule)
}

// SpecForFork dispatches to the builder for the given fork.
func SpecForFork(f Fork) Spec {
	switch f {
	case Frontier:
		return FrontierSpec()
	case Homestead:
		return HomesteadSpec()
	case TangerineWhistle:
		return TangerineWhistleSpec()
	case SpuriousDragon:
		return SpuriousDragonSpec()
	case Byzantium:
		return ByzantiumSpec()
	case Constantinople:
		return ConstantinopleSpec()
	case Istanbul:
		return IstanbulSpec()
	case Berlin:
		return BerlinSpec()
	case London:
		return LondonSpec()
	case Merge:
		return MergeSpec()
	case Shanghai:
		return ShanghaiSpec()
	case Cancun:
		return CancunSpec()
	case Prague:
		return PragueSpec()
	default:
		return PragueSpec()
	}
}
