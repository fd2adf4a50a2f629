// Package memory implements the EVM's byte-addressable linear memory: a
// word-aligned, zero-initialised buffer that only grows.
package memory

import "github.com/holiman/uint256"

// wordSize is the EVM memory alignment granularity.
const wordSize = 32

// Memory is an owned, growable byte buffer. Its logical size is always a
// multiple of 32 bytes; touching any byte beyond the current size grows
// the buffer and zero-fills the new region before the caller's write or
// read is applied. The cost of that growth is charged by the caller
// (interpreter + gas package) before EnsureCapacity is invoked, per the
// loop ordering in which dynamic gas is charged before execution mutates
// state.
type Memory struct {
	store []byte
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{}
}

// Len returns the current logical size of memory in bytes.
func (m *Memory) Len() int { return len(m.store) }

// Data returns the full backing slice. Callers must not retain it past the
// next mutation.
func (m *Memory) Data() []byte { return m.store }

// WordCount returns the size of memory in 32-byte words.
func (m *Memory) WordCount() uint64 { return uint64(len(m.store)) / wordSize }

// EnsureCapacity grows the buffer so that [offset, offset+size) is
// addressable, rounding the new size up to the next 32-byte word. A
// size of 0 is a no-op regardless of offset, matching the EVM's
// "reads/writes of zero length never touch memory" convention.
func (m *Memory) EnsureCapacity(offset, size uint64) {
	if size == 0 {
		return
	}
	need := offset + size
	if need <= uint64(len(m.store)) {
		return
	}
	newWords := (need + wordSize - 1) / wordSize
	newSize := newWords * wordSize
	grown := make([]byte, newSize)
	copy(grown, m.store)
	m.store = grown
}

// MStore8 writes the low byte of val at offset. The caller must have
// already called EnsureCapacity(offset, 1).
func (m *Memory) MStore8(offset uint64, val byte) {
	m.store[offset] = val
}

// MStore writes val as 32 big-endian bytes at offset. The caller must have
// already called EnsureCapacity(offset, 32).
func (m *Memory) MStore(offset uint64, val *uint256.Int) {
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// MLoad reads 32 big-endian bytes starting at offset as a 256-bit word.
// The caller must have already called EnsureCapacity(offset, 32).
func (m *Memory) MLoad(offset uint64) *uint256.Int {
	return new(uint256.Int).SetBytes(m.store[offset : offset+32])
}

// GetSlice returns a copy of memory in [offset, offset+size). The caller
// must have already called EnsureCapacity(offset, size). Returns nil for
// size == 0.
func (m *Memory) GetSlice(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// GetSliceMut returns a direct, mutable view into memory in
// [offset, offset+size). The caller must have already called
// EnsureCapacity(offset, size). Returns nil for size == 0.
func (m *Memory) GetSliceMut(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Set copies value into memory at the given offset; the caller must have
// already ensured capacity for [offset, offset+size).
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	copy(m.store[offset:offset+size], value)
}
