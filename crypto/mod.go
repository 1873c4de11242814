// Package crypto defines the cryptographic primitives used to sign the
// transactions and to verify the signatures of the account signers.
package crypto

import (
	"encoding"
	"hash"
)

// HashFactory is an interface to produce a hash digest.
type HashFactory interface {
	New() hash.Hash
}

// PublicKey is a public identity that can be used to verify a signature.
type PublicKey interface {
	encoding.BinaryMarshaler
	encoding.TextMarshaler

	Verify(msg []byte, signature Signature) error

	Equal(other interface{}) bool
}

// Signature is a verifiable element for a unique message.
type Signature interface {
	encoding.BinaryMarshaler

	Equal(other Signature) bool
}

// Signer provides the primitives to sign messages.
type Signer interface {
	GetPublicKey() PublicKey

	Sign(msg []byte) (Signature, error)
}
