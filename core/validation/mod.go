// Package validation defines the service that processes a batch of
// transactions against the ledger.
package validation

import (
	"io"

	"go.dedis.ch/opcore/core/operation"
	"go.dedis.ch/opcore/core/store"
	"go.dedis.ch/opcore/core/txn"
)

// Transaction is a transaction carrying a list of operations.
type Transaction interface {
	txn.Transaction

	// GetOperations returns the operations in the order they are applied.
	GetOperations() []operation.Operation

	// GetFee returns the fee binding of each operation.
	GetFee() operation.Fee
}

// TransactionResult is the outcome of the processing of a transaction.
type TransactionResult interface {
	GetTransaction() Transaction

	// GetStatus returns true if the transaction is accepted, otherwise false
	// with the reason.
	GetStatus() (bool, string)

	// GetOperationResults returns the result of each operation processed.
	GetOperationResults() []*operation.Result
}

// Data is the result of a validation.
type Data interface {
	Fingerprint(w io.Writer) error

	GetTransactionResults() []TransactionResult
}

// Service is the validation service that will process a batch of transactions
// and update the ledger accordingly.
type Service interface {
	// Validate applies the transactions to the snapshot and returns their
	// results. An error is returned only when the batch cannot be processed.
	Validate(snap store.Snapshot, txs []Transaction) (Data, error)

	// Check verifies that the transaction could be applied on top of the
	// ledger without applying it.
	Check(r store.Readable, tx Transaction) (TransactionResult, error)
}
