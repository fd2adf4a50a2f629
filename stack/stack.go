// Package stack implements the EVM operand stack: a fixed-capacity LIFO of
// 1024 256-bit words with O(1) push/pop/peek/dup/swap and no heap
// allocation inside any operation.
package stack

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Limit is the maximum number of elements the stack may hold.
const Limit = 1024

// maxSwap and maxDup bound the SWAPn/DUPn operand (SWAP1..16, DUP1..16).
const (
	maxSwap = 16
	maxDup  = 16
)

// Sentinel errors returned by Stack operations.
var (
	ErrOverflow      = errors.New("stack: overflow (max 1024)")
	ErrUnderflow     = errors.New("stack: underflow")
	ErrSwapOutOfRange = errors.New("stack: swap position out of range")
	ErrDupOutOfRange  = errors.New("stack: dup position out of range")
)

// Stack is a fixed-capacity array of 1024 *uint256.Int slots plus a length
// cursor. The backing array is part of the struct (not a slice header to a
// heap allocation), so a zero-value Stack is immediately usable and every
// push/pop/peek/dup/swap touches only the array: no allocation after
// construction, total backing is exactly 1024 * 32 bytes = 32 KiB.
type Stack struct {
	data [Limit]uint256.Int
	len  int
}

// New returns a new empty Stack.
func New() *Stack {
	return &Stack{}
}

// Len returns the number of elements currently on the stack.
func (s *Stack) Len() int { return s.len }

// Push pushes v onto the stack, copying its value. Returns ErrOverflow if
// the stack already holds 1024 elements.
func (s *Stack) Push(v *uint256.Int) error {
	if s.len >= Limit {
		return ErrOverflow
	}
	s.data[s.len].Set(v)
	s.len++
	return nil
}

// Pop removes and returns the top element. Returns ErrUnderflow if empty.
func (s *Stack) Pop() (*uint256.Int, error) {
	if s.len == 0 {
		return nil, ErrUnderflow
	}
	s.len--
	return &s.data[s.len], nil
}

// Peek returns a pointer to the element at depth i from the top (0 = top)
// without removing it. The caller must not mutate the result; use PeekMut
// for that. Returns ErrUnderflow if i >= Len().
func (s *Stack) Peek(i int) (*uint256.Int, error) {
	if i < 0 || i >= s.len {
		return nil, ErrUnderflow
	}
	return &s.data[s.len-1-i], nil
}

// PeekMut returns a mutable pointer to the element at depth i from the top
// (0 = top), for handlers that compute results in place. Returns
// ErrUnderflow if i >= Len().
func (s *Stack) PeekMut(i int) (*uint256.Int, error) {
	return s.Peek(i)
}

// Back is shorthand for Peek(0), the top of the stack.
func (s *Stack) Back() (*uint256.Int, error) {
	return s.Peek(0)
}

// Dup pushes a copy of the element at index n-1 from the top (DUP1
// duplicates the top element, n=1). Requires n in [1,16] and at least n
// elements already on the stack; fails with ErrOverflow if the stack is
// already full.
func (s *Stack) Dup(n int) error {
	if n < 1 || n > maxDup {
		return fmt.Errorf("%w: DUP%d", ErrDupOutOfRange, n)
	}
	if s.len < n {
		return fmt.Errorf("%w: need %d elements for DUP%d, have %d", ErrUnderflow, n, n, s.len)
	}
	if s.len >= Limit {
		return ErrOverflow
	}
	s.data[s.len].Set(&s.data[s.len-n])
	s.len++
	return nil
}

// Swap exchanges the top element with the element at index n from the top
// (SWAP1 swaps top with the second element, n=1). Requires n in [1,16] and
// at least n+1 elements on the stack.
func (s *Stack) Swap(n int) error {
	if n < 1 || n > maxSwap {
		return fmt.Errorf("%w: SWAP%d", ErrSwapOutOfRange, n)
	}
	if s.len < n+1 {
		return fmt.Errorf("%w: need %d elements for SWAP%d, have %d", ErrUnderflow, n+1, n, s.len)
	}
	top := s.len - 1
	nth := s.len - 1 - n
	s.data[top], s.data[nth] = s.data[nth], s.data[top]
	return nil
}

// Reset empties the stack without releasing the backing array.
func (s *Stack) Reset() {
	s.len = 0
}

// Data returns the stack contents as a slice, bottom element first. Used
// for diagnostics and tests; callers must not retain it across further
// stack mutation.
func (s *Stack) Data() []uint256.Int {
	return s.data[:s.len]
}
