package vm

import (
	"testing"

	"github.com/eth2030/evmcore/evmtypes"
	"github.com/eth2030/evmcore/host"
)

func TestStatusForErrorWriteProtectionReverts(t *testing.T) {
	if got := StatusForError(ErrWriteProtection); got != host.StatusRevert {
		t.Fatalf("StatusForError(ErrWriteProtection) = %v, want StatusRevert", got)
	}
}

func TestStatusForErrorInvalidPC(t *testing.T) {
	if got := StatusForError(ErrInvalidPC); got != host.StatusInvalidPC {
		t.Fatalf("StatusForError(ErrInvalidPC) = %v, want StatusInvalidPC", got)
	}
}

func TestRunTruncatedPushImmediate(t *testing.T) {
	h := newFakeHost()
	interp := newTestInterpreter(h)

	addr := evmtypes.Address{1}
	// PUSH2 with only one immediate byte left in the code.
	code := []byte{byte(PUSH2), 0x01}
	c := newTestContract(evmtypes.Address{9}, addr, code, 100000)

	_, err := interp.Run(c, nil)
	if err != ErrInvalidPC {
		t.Fatalf("err = %v, want ErrInvalidPC", err)
	}
}
