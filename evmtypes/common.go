// Package evmtypes defines the fixed-size byte containers shared across the
// interpreter: 20-byte addresses and 32-byte hashes/words.
package evmtypes

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// AddressLength is the byte length of an Ethereum account address.
	AddressLength = 20
	// HashLength is the byte length of a 32-byte word (hash, slot key, topic).
	HashLength = 32
)

// Address represents the 20-byte address of an Ethereum account.
type Address [AddressLength]byte

// B256 represents a 32-byte word: a hash, a storage slot key, or a log topic.
type B256 [HashLength]byte

// BytesToAddress converts bytes to Address, left-padding if shorter than 20
// bytes and truncating to the low 20 bytes if longer.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(fromHex(s))
}

// SetBytes sets the address from a byte slice, left-padding if necessary.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the hex string representation of the address.
func (a Address) Hex() string { return fmt.Sprintf("0x%x", a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsZero returns whether the address is the zero address.
func (a Address) IsZero() bool { return a == Address{} }

// U256 returns the address zero-extended into a 256-bit word.
func (a Address) U256() *uint256.Int {
	return new(uint256.Int).SetBytes(a[:])
}

// AddressFromU256 takes the low 20 bytes of a 256-bit word as an address,
// per the EVM convention that an address operand is a truncated U256.
func AddressFromU256(v *uint256.Int) Address {
	var a Address
	b := v.Bytes20()
	copy(a[:], b[:])
	return a
}

// BytesToHash converts bytes to B256, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) B256 {
	var h B256
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to B256.
func HexToHash(s string) B256 {
	return BytesToHash(fromHex(s))
}

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *B256) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Bytes returns the byte representation of the hash.
func (h B256) Bytes() []byte { return h[:] }

// Hex returns the hex string representation of the hash.
func (h B256) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// String implements fmt.Stringer.
func (h B256) String() string { return h.Hex() }

// IsZero returns whether the hash is all zeros.
func (h B256) IsZero() bool { return h == B256{} }

// U256 interprets the hash as a big-endian 256-bit word.
func (h B256) U256() *uint256.Int {
	return new(uint256.Int).SetBytes(h[:])
}

// U256ToHash serialises a 256-bit word as a big-endian 32-byte word.
func U256ToHash(v *uint256.Int) B256 {
	return B256(v.Bytes32())
}

func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
