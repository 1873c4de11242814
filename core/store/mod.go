// Package store defines the primitives of a simple key/value storage that the
// ledger entries are written to.
//
// A missing key is reported by a nil value and a nil error. An error is only
// returned when the storage itself fails.
package store

// Readable is the interface for a readable store.
type Readable interface {
	Get(key []byte) ([]byte, error)
}

// Writable is the interface for a writable store.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a state of the store that can be read and written
// independently. A write is applied only to the snapshot reference.
type Snapshot interface {
	Readable
	Writable
}
