// Package access defines the authorization primitives shared by the
// operations: the signing-weight threshold levels and the set of signers
// already counted for a transaction.
package access

import (
	"encoding"
	"fmt"
)

// Identity is an abstraction to uniquely identify a signer.
type Identity interface {
	encoding.TextMarshaler

	Equal(other interface{}) bool
}

// Level is one of the ascending signing-weight thresholds an account defines.
type Level int

const (
	// LevelLow is the threshold required by operations with a limited impact.
	LevelLow Level = iota

	// LevelMedium is the threshold required by default.
	LevelMedium

	// LevelHigh is the threshold required by administrative operations.
	LevelHigh
)

// String implements fmt.Stringer. It returns the name of the level.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// SignerSet is the set of signers that have already been counted toward the
// threshold of an operation of a transaction. It is shared by the operations
// of the same transaction so that a signature is not counted twice.
type SignerSet struct {
	signers []Identity
}

// NewSignerSet creates a new set from the list of identities by removing
// duplicates.
func NewSignerSet(idents ...Identity) *SignerSet {
	set := &SignerSet{}
	set.Add(idents...)

	return set
}

// Contains returns true if the identity exists in the set.
func (set *SignerSet) Contains(target Identity) bool {
	for _, ident := range set.signers {
		if ident.Equal(target) {
			return true
		}
	}

	return false
}

// Add adds the identities that are not yet in the set.
func (set *SignerSet) Add(idents ...Identity) {
	for _, ident := range idents {
		if !set.Contains(ident) {
			set.signers = append(set.signers, ident)
		}
	}
}

// Len returns the number of signers in the set.
func (set *SignerSet) Len() int {
	return len(set.signers)
}

// GetSigners returns the signers in the order they were added.
func (set *SignerSet) GetSigners() []Identity {
	return append([]Identity{}, set.signers...)
}
