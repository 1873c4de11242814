// Package txn defines the abstraction of the transaction that carries the
// operations.
//
// The operations only depend on the parent transaction to know the default
// acting account and to verify that the signatures presented with the
// transaction are enough to authorize an account.
package txn

import (
	"go.dedis.ch/opcore/core/access"
	"go.dedis.ch/opcore/core/ledger"
)

// Transaction is the parent of a list of operations.
type Transaction interface {
	// GetID returns the unique identifier for the transaction.
	GetID() []byte

	// GetSourceAccountID returns the account of the transaction which is the
	// acting account of the operations without an explicit one.
	GetSourceAccountID() ledger.AccountID

	// CheckSignature returns true if the signatures of the transaction, from
	// signers of the account that are not in the set yet, reach the weight.
	// The signers counted are added to the set on success. A zero weight only
	// requires one signer of the account to have signed and consumes nothing.
	CheckSignature(account *ledger.Account, weight uint8, used *access.SignerSet) bool
}
