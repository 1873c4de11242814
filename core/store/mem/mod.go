// Package mem implements the ledger delta, an in-memory snapshot that
// accumulates the pending mutations on top of a parent store.
//
// The delta only records the updates of its own level. A read looks up the
// local updates first and falls back on the parent when the key has not been
// touched. Deletions are kept as tombstones so that they hide the parent
// value.
package mem

import (
	"sort"

	"go.dedis.ch/opcore/core/store"
	"golang.org/x/xerrors"
)

type item struct {
	value   []byte
	deleted bool
}

// Delta is an accumulator of pending state mutations. It is never committed
// by itself, the owner decides when to apply it to another store.
//
// - implements store.Snapshot
type Delta struct {
	parent store.Readable
	store  map[string]item
}

// NewDelta creates a new empty delta on top of the parent. The parent can be
// nil in which case the delta starts from an empty state.
func NewDelta(parent store.Readable) *Delta {
	return &Delta{
		parent: parent,
		store:  make(map[string]item),
	}
}

// Get implements store.Readable. It returns the value of the key if it is
// set in the delta, otherwise it reads the parent. A nil value is returned
// when the key does not exist.
func (d *Delta) Get(key []byte) ([]byte, error) {
	it, found := d.store[string(key)]
	if found {
		if it.deleted {
			return nil, nil
		}

		return it.value, nil
	}

	if d.parent == nil {
		return nil, nil
	}

	value, err := d.parent.Get(key)
	if err != nil {
		return nil, xerrors.Errorf("parent: %v", err)
	}

	return value, nil
}

// Set implements store.Writable. It records the value for the key.
func (d *Delta) Set(key, value []byte) error {
	d.store[string(key)] = item{value: value}

	return nil
}

// Delete implements store.Writable. It records a tombstone for the key.
func (d *Delta) Delete(key []byte) error {
	d.store[string(key)] = item{deleted: true}

	return nil
}

// Len returns the number of keys touched by the delta.
func (d *Delta) Len() int {
	return len(d.store)
}

// Apply writes the mutations of the delta into the given store. Keys are
// written in ascending order so that the sequence of writes is the same on
// every node.
func (d *Delta) Apply(w store.Writable) error {
	keys := make([]string, 0, len(d.store))
	for key := range d.store {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		it := d.store[key]

		var err error
		if it.deleted {
			err = w.Delete([]byte(key))
		} else {
			err = w.Set([]byte(key), it.value)
		}

		if err != nil {
			return xerrors.Errorf("failed to apply key %#x: %v", key, err)
		}
	}

	return nil
}
