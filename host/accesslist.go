package host

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/eth2030/evmcore/evmtypes"
)

// AccessList implements EIP-2929 warm/cold access tracking for addresses
// and storage slots, with journaling so that warmth introduced by a
// sub-call can be undone if that sub-call reverts (see SPEC_FULL.md §4.14,
// which resolves the distilled spec's open question on access-list
// snapshot/revert behaviour: mainnet consensus undoes warming done by a
// reverted frame, and this type is how the interpreter implements that).
type AccessList struct {
	addresses map[evmtypes.Address]int                    // -> journal index, -1 if pre-populated
	slots     map[evmtypes.Address]map[evmtypes.B256]int // -> journal index, -1 if pre-populated

	journal     []accessListChange
	snapshotIDs []int
}

type accessListChangeKind uint8

const (
	changeAddAddress accessListChangeKind = iota
	changeAddSlot
)

type accessListChange struct {
	kind    accessListChangeKind
	address evmtypes.Address
	slot    evmtypes.B256
}

// NewAccessList returns an empty AccessList.
func NewAccessList() *AccessList {
	return &AccessList{
		addresses: make(map[evmtypes.Address]int),
		slots:     make(map[evmtypes.Address]map[evmtypes.B256]int),
	}
}

// PreWarm marks sender, recipient (if any), and the given addresses (e.g.
// precompile addresses 0x01-0x13, and any EIP-2930 access-list entries) as
// warm from the very start of the transaction, immune to every revert.
func (al *AccessList) PreWarm(sender evmtypes.Address, to *evmtypes.Address, extra []evmtypes.Address) {
	al.addAddressNoJournal(sender)
	if to != nil {
		al.addAddressNoJournal(*to)
	}
	for _, a := range extra {
		al.addAddressNoJournal(a)
	}
}

func (al *AccessList) addAddressNoJournal(addr evmtypes.Address) {
	if _, ok := al.addresses[addr]; !ok {
		al.addresses[addr] = -1
	}
}

// WarmAccount returns whether addr was already warm before this call, and
// marks it warm. A first touch in a transaction is cold; every later touch
// is warm.
func (al *AccessList) WarmAccount(addr evmtypes.Address) (wasWarm bool) {
	if _, ok := al.addresses[addr]; ok {
		return true
	}
	idx := len(al.journal)
	al.addresses[addr] = idx
	al.journal = append(al.journal, accessListChange{kind: changeAddAddress, address: addr})
	return false
}

// WarmSlot returns whether (addr, key) was already warm before this call,
// and marks it (and addr) warm.
func (al *AccessList) WarmSlot(addr evmtypes.Address, key evmtypes.B256) (wasWarm bool) {
	al.WarmAccount(addr)

	slots, ok := al.slots[addr]
	if !ok {
		slots = make(map[evmtypes.B256]int)
		al.slots[addr] = slots
	}
	if _, ok := slots[key]; ok {
		return true
	}
	idx := len(al.journal)
	slots[key] = idx
	al.journal = append(al.journal, accessListChange{kind: changeAddSlot, address: addr, slot: key})
	return false
}

// Snapshot returns a journal position that RevertToSnapshot can later
// unwind to. The interpreter takes one before dispatching any nested call
// or create.
func (al *AccessList) Snapshot() int {
	id := len(al.snapshotIDs)
	al.snapshotIDs = append(al.snapshotIDs, len(al.journal))
	return id
}

// RevertToSnapshot undoes every warming recorded after the given snapshot.
// Pre-populated entries (journal index -1) are never reverted. The
// interpreter calls this when a dispatched sub-call's status is not
// StatusSuccess.
func (al *AccessList) RevertToSnapshot(id int) {
	if id < 0 || id >= len(al.snapshotIDs) {
		return
	}
	journalLen := al.snapshotIDs[id]

	for i := len(al.journal) - 1; i >= journalLen; i-- {
		change := al.journal[i]
		switch change.kind {
		case changeAddSlot:
			if slots := al.slots[change.address]; slots != nil {
				if idx, ok := slots[change.slot]; ok && idx >= journalLen {
					delete(slots, change.slot)
				}
			}
		case changeAddAddress:
			if idx, ok := al.addresses[change.address]; ok && idx >= journalLen {
				delete(al.addresses, change.address)
			}
		}
	}

	al.journal = al.journal[:journalLen]
	al.snapshotIDs = al.snapshotIDs[:id]
}

// WarmAddressSet returns the set of all currently-warm addresses as a
// golang-set, a convenience view for diagnostics; within this module its
// only caller is the interpreter's depth-0 debug log line, which reports
// the set's size.
func (al *AccessList) WarmAddressSet() mapset.Set[evmtypes.Address] {
	s := mapset.NewThreadUnsafeSet[evmtypes.Address]()
	for addr := range al.addresses {
		s.Add(addr)
	}
	return s
}
