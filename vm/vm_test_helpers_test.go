package vm

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/evmtypes"
	"github.com/eth2030/evmcore/host"
)

// fakeHost is a minimal in-memory host.Host for exercising the interpreter
// without any real state backend, in the spirit of the teacher's own
// table-driven opcode tests that stub out external state.
type fakeHost struct {
	balances map[evmtypes.Address]*uint256.Int
	code     map[evmtypes.Address][]byte
	nonces   map[evmtypes.Address]uint64
	storage  map[evmtypes.Address]map[uint256.Int]*uint256.Int
	original map[evmtypes.Address]map[uint256.Int]*uint256.Int
	transient map[evmtypes.Address]map[uint256.Int]*uint256.Int
	collide  map[evmtypes.Address]bool
	logs     []fakeLog

	nextCreateAddr evmtypes.Address
}

type fakeLog struct {
	addr   evmtypes.Address
	topics []evmtypes.B256
	data   []byte
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		balances:  make(map[evmtypes.Address]*uint256.Int),
		code:      make(map[evmtypes.Address][]byte),
		nonces:    make(map[evmtypes.Address]uint64),
		storage:   make(map[evmtypes.Address]map[uint256.Int]*uint256.Int),
		original:  make(map[evmtypes.Address]map[uint256.Int]*uint256.Int),
		transient: make(map[evmtypes.Address]map[uint256.Int]*uint256.Int),
		collide:   make(map[evmtypes.Address]bool),
	}
}

func (h *fakeHost) Balance(addr evmtypes.Address) *uint256.Int {
	if b, ok := h.balances[addr]; ok {
		return b.Clone()
	}
	return new(uint256.Int)
}

func (h *fakeHost) AccountExists(addr evmtypes.Address) bool {
	if h.nonces[addr] != 0 {
		return true
	}
	if len(h.code[addr]) != 0 {
		return true
	}
	return !h.Balance(addr).IsZero()
}

func (h *fakeHost) Code(addr evmtypes.Address) []byte {
	return append([]byte(nil), h.code[addr]...)
}

func (h *fakeHost) CodeHash(addr evmtypes.Address) evmtypes.B256 { return evmtypes.B256{} }
func (h *fakeHost) CodeSize(addr evmtypes.Address) uint64        { return uint64(len(h.code[addr])) }
func (h *fakeHost) BlockHash(number uint64) evmtypes.B256        { return evmtypes.B256{} }

func (h *fakeHost) slotMap(m map[evmtypes.Address]map[uint256.Int]*uint256.Int, addr evmtypes.Address) map[uint256.Int]*uint256.Int {
	s, ok := m[addr]
	if !ok {
		s = make(map[uint256.Int]*uint256.Int)
		m[addr] = s
	}
	return s
}

func (h *fakeHost) SLoad(addr evmtypes.Address, key *uint256.Int) *uint256.Int {
	if v, ok := h.slotMap(h.storage, addr)[*key]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

func (h *fakeHost) OriginalValue(addr evmtypes.Address, key *uint256.Int) *uint256.Int {
	if v, ok := h.slotMap(h.original, addr)[*key]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

func (h *fakeHost) SStore(addr evmtypes.Address, key, value *uint256.Int) {
	slots := h.slotMap(h.storage, addr)
	if _, ok := h.slotMap(h.original, addr)[*key]; !ok {
		h.slotMap(h.original, addr)[*key] = h.SLoad(addr, key)
	}
	slots[*key] = value.Clone()
}

func (h *fakeHost) TLoad(addr evmtypes.Address, key *uint256.Int) *uint256.Int {
	if v, ok := h.slotMap(h.transient, addr)[*key]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

func (h *fakeHost) TStore(addr evmtypes.Address, key, value *uint256.Int) {
	h.slotMap(h.transient, addr)[*key] = value.Clone()
}

func (h *fakeHost) Nonce(addr evmtypes.Address) uint64 { return h.nonces[addr] }
func (h *fakeHost) SetNonce(addr evmtypes.Address, nonce uint64) { h.nonces[addr] = nonce }

func (h *fakeHost) NewContractAddress(caller evmtypes.Address, nonce uint64) evmtypes.Address {
	return h.nextCreateAddr
}

func (h *fakeHost) NewContractAddress2(caller evmtypes.Address, salt evmtypes.B256, initCodeHash evmtypes.B256) evmtypes.Address {
	return h.nextCreateAddr
}

func (h *fakeHost) CreateAccount(addr evmtypes.Address, code []byte) {
	h.code[addr] = append([]byte(nil), code...)
	h.nonces[addr] = 1
}

func (h *fakeHost) HasCollision(addr evmtypes.Address) bool { return h.collide[addr] }

func (h *fakeHost) Transfer(from, to evmtypes.Address, value *uint256.Int) error {
	if value.IsZero() {
		return nil
	}
	fromBal := h.Balance(from)
	if fromBal.Lt(value) {
		return errors.New("insufficient balance")
	}
	h.balances[from] = new(uint256.Int).Sub(fromBal, value)
	h.balances[to] = new(uint256.Int).Add(h.Balance(to), value)
	return nil
}

func (h *fakeHost) SelfDestruct(addr, beneficiary evmtypes.Address, createdInCurrentTx bool) {
	bal := h.Balance(addr)
	h.balances[beneficiary] = new(uint256.Int).Add(h.Balance(beneficiary), bal)
	h.balances[addr] = new(uint256.Int)
	if createdInCurrentTx {
		delete(h.code, addr)
	}
}

func (h *fakeHost) Log(addr evmtypes.Address, topics []evmtypes.B256, data []byte) {
	h.logs = append(h.logs, fakeLog{addr: addr, topics: topics, data: append([]byte(nil), data...)})
}

var _ host.Host = (*fakeHost)(nil)
