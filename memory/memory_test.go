package memory

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestEnsureCapacityRoundsUpToWord(t *testing.T) {
	m := New()
	m.EnsureCapacity(0, 1)
	if m.Len() != 32 {
		t.Fatalf("Len() = %d, want 32", m.Len())
	}
	m.EnsureCapacity(40, 1)
	if m.Len() != 64 {
		t.Fatalf("Len() = %d, want 64", m.Len())
	}
}

func TestEnsureCapacityZeroSizeNoop(t *testing.T) {
	m := New()
	m.EnsureCapacity(1000, 0)
	if m.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after a zero-size touch", m.Len())
	}
}

func TestMStoreMLoadRoundtrip(t *testing.T) {
	m := New()
	m.EnsureCapacity(0, 32)
	v := new(uint256.Int).SetUint64(0xcafebabe)
	m.MStore(0, v)
	got := m.MLoad(0)
	if got.Cmp(v) != 0 {
		t.Fatalf("MLoad(0) = %v, want %v", got, v)
	}
}

func TestMStore8(t *testing.T) {
	m := New()
	m.EnsureCapacity(5, 1)
	m.MStore8(5, 0x42)
	if m.Data()[5] != 0x42 {
		t.Fatalf("Data()[5] = %x, want 0x42", m.Data()[5])
	}
}

func TestGetSliceZeroLength(t *testing.T) {
	m := New()
	if out := m.GetSlice(0, 0); out != nil {
		t.Fatalf("GetSlice(0,0) = %v, want nil", out)
	}
}

func TestSetAndGetSlice(t *testing.T) {
	m := New()
	m.EnsureCapacity(0, 4)
	m.Set(0, 4, []byte{1, 2, 3, 4})
	out := m.GetSlice(0, 4)
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("GetSlice = %v, want %v", out, want)
		}
	}
}

func TestGetSliceMutViewsLiveMemory(t *testing.T) {
	m := New()
	m.EnsureCapacity(0, 32)
	view := m.GetSliceMut(0, 32)
	view[0] = 0xff
	if m.Data()[0] != 0xff {
		t.Fatalf("GetSliceMut did not return a live view into memory")
	}
}
