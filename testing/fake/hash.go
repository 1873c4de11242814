package fake

import (
	"crypto/sha256"
	"hash"
)

// Hash is a fake implementation of hash.Hash that can fail on a write after a
// given number of successful ones.
//
// - implements hash.Hash
type Hash struct {
	hash.Hash
	delay int
	err   error
}

// NewBadHash returns a hash that fails on the first write.
func NewBadHash() *Hash {
	return NewBadHashWithDelay(0)
}

// NewBadHashWithDelay returns a hash that fails after the given number of
// successful writes.
func NewBadHashWithDelay(delay int) *Hash {
	return &Hash{
		Hash:  sha256.New(),
		delay: delay,
		err:   fakeErr,
	}
}

// Write implements hash.Hash.
func (h *Hash) Write(data []byte) (int, error) {
	if h.Hash == nil {
		h.Hash = sha256.New()
	}

	if h.err != nil {
		if h.delay == 0 {
			return 0, h.err
		}

		h.delay--
	}

	return h.Hash.Write(data)
}

// Sum implements hash.Hash.
func (h *Hash) Sum(b []byte) []byte {
	if h.Hash == nil {
		h.Hash = sha256.New()
	}

	return h.Hash.Sum(b)
}

// HashFactory is a fake implementation of a hash factory.
//
// - implements crypto.HashFactory
type HashFactory struct {
	hash *Hash
}

// NewHashFactory returns a factory that always returns the given hash.
func NewHashFactory(h *Hash) HashFactory {
	return HashFactory{
		hash: h,
	}
}

// New implements crypto.HashFactory.
func (f HashFactory) New() hash.Hash {
	return f.hash
}
