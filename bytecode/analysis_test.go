package bytecode

import "testing"

func TestJumpdestInsidePushImmediateIsInvalid(t *testing.T) {
	// PUSH1 0x5B; JUMPDEST — the 0x5B at index 1 is a PUSH1 immediate, not
	// a real JUMPDEST, even though it equals the JUMPDEST opcode byte.
	code := []byte{0x60, 0x5b, 0x5b}
	ab := Analyze(code)
	if ab.IsValidJumpdest(1) {
		t.Error("index 1 (PUSH1 immediate) must not be a valid jumpdest")
	}
	if !ab.IsValidJumpdest(2) {
		t.Error("index 2 (real JUMPDEST) must be valid")
	}
}

func TestJumpdestClampedAtEndOfCode(t *testing.T) {
	// PUSH32 truncated at the end of code: must not panic or read OOB.
	code := make([]byte, 5)
	code[0] = 0x7f // PUSH32
	ab := Analyze(code)
	if ab.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", ab.Len())
	}
}

func TestDelegationStubDetection(t *testing.T) {
	code := make([]byte, 23)
	code[0] = 0xef
	code[1] = 0x01
	code[2] = 0x00
	for i := 0; i < 20; i++ {
		code[3+i] = byte(i + 1)
	}
	ab := Analyze(code)
	if !ab.IsDelegation() {
		t.Fatal("expected delegation stub to be detected")
	}
	target := ab.DelegationTarget()
	if target[0] != 1 || target[19] != 20 {
		t.Errorf("delegation target not copied correctly: %v", target)
	}
}

func TestNonDelegationCodeOfSameLength(t *testing.T) {
	code := make([]byte, 23)
	code[0] = 0x60 // PUSH1, not the delegation magic
	ab := Analyze(code)
	if ab.IsDelegation() {
		t.Error("ordinary 23-byte code must not be treated as a delegation stub")
	}
}

func TestAtReturnsImplicitStopPastEnd(t *testing.T) {
	ab := Analyze([]byte{0x01})
	if ab.At(5) != 0 {
		t.Errorf("At() past end = %d, want 0 (STOP)", ab.At(5))
	}
}
