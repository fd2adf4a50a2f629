package gas

import "errors"

// ErrOutOfGas is returned by Consume when a charge would exceed the gas
// limit. On this path Consume forces Used to Limit: an out-of-gas halt
// forfeits the entire amount available to the frame, it does not leave
// only the partial charge applied.
var ErrOutOfGas = errors.New("gas: out of gas")

// Meter tracks the gas budget for one execution frame: the limit, gas used
// so far, accumulated refund, and the last charged memory-expansion cost
// (kept here rather than on Memory so that resetting memory between nested
// frames never desynchronises the incremental quadratic-cost accounting).
type Meter struct {
	limit          uint64
	used           uint64
	refunded       int64
	lastMemoryCost uint64

	// MaxRefundQuotient caps FinalRefund at used/MaxRefundQuotient: 2
	// pre-London, 5 from EIP-3529 (London) onward.
	MaxRefundQuotient uint64
}

// NewMeter returns a Meter with the given gas limit.
func NewMeter(limit uint64, maxRefundQuotient uint64) *Meter {
	return &Meter{limit: limit, MaxRefundQuotient: maxRefundQuotient}
}

// Limit returns the gas limit this meter was constructed with.
func (m *Meter) Limit() uint64 { return m.limit }

// Used returns the cumulative gas consumed so far.
func (m *Meter) Used() uint64 { return m.used }

// Remaining returns limit - used.
func (m *Meter) Remaining() uint64 { return m.limit - m.used }

// Consume charges n gas. If used+n would exceed the limit, it forces
// Used to Limit (the whole frame's gas is forfeited) and returns
// ErrOutOfGas.
func (m *Meter) Consume(n uint64) error {
	if n > m.limit-m.used {
		m.used = m.limit
		return ErrOutOfGas
	}
	m.used += n
	return nil
}

// GiveBack returns gas left over from a nested call/create back to this
// frame's budget, decrementing Used. The interpreter calls this after a
// nested frame returns with less than the full amount forwarded to it.
func (m *Meter) GiveBack(n uint64) {
	m.used -= n
}

// Refund adds n to the accumulated refund counter.
func (m *Meter) Refund(n uint64) {
	m.refunded += int64(n)
}

// AdjustRefund applies a signed adjustment to the accumulated refund
// counter; SSTORE dirty-slot transitions can produce negative deltas.
func (m *Meter) AdjustRefund(delta int64) {
	m.refunded += delta
}

// RefundedRaw returns the raw accumulated refund counter, which may be
// negative transiently within a frame (consensus guarantees the final
// value at the top level is never negative).
func (m *Meter) RefundedRaw() int64 { return m.refunded }

// MemoryExpansionCost returns the incremental cost of growing memory from
// the last charged size to newSize, i.e. the delta against lastMemoryCost,
// WITHOUT mutating state. The interpreter must call UpdateMemoryCost after
// charging this amount.
func (m *Meter) MemoryExpansionCost(newSize uint64) uint64 {
	cost := MemoryGasCost(newSize)
	if cost <= m.lastMemoryCost {
		return 0
	}
	return cost - m.lastMemoryCost
}

// UpdateMemoryCost records the new total memory cost baseline after a
// handler has grown memory, so the next MemoryExpansionCost delta is
// computed correctly.
func (m *Meter) UpdateMemoryCost(newSize uint64) {
	cost := MemoryGasCost(newSize)
	if cost > m.lastMemoryCost {
		m.lastMemoryCost = cost
	}
}

// FinalRefund returns the refund actually granted at the end of
// execution: min(refunded, used/MaxRefundQuotient), floored at zero.
func (m *Meter) FinalRefund() uint64 {
	if m.refunded <= 0 {
		return 0
	}
	cap := m.used / m.MaxRefundQuotient
	r := uint64(m.refunded)
	if r > cap {
		return cap
	}
	return r
}
