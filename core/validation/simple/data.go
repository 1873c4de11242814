package simple

import (
	"encoding/binary"
	"io"

	"go.dedis.ch/opcore/core/operation"
	"go.dedis.ch/opcore/core/validation"
	"golang.org/x/xerrors"
)

// TransactionResult is the result of a transaction processing. It contains the
// transaction, its state of success and the results of its operations.
//
// - implements validation.TransactionResult
type TransactionResult struct {
	tx       validation.Transaction
	accepted bool
	reason   string
	ops      []*operation.Result
}

// NewTransactionResult creates a new transaction result for the provided
// transaction.
func NewTransactionResult(tx validation.Transaction, accepted bool, reason string,
	ops []*operation.Result) TransactionResult {

	return TransactionResult{
		tx:       tx,
		accepted: accepted,
		reason:   reason,
		ops:      ops,
	}
}

// GetTransaction implements validation.TransactionResult. It returns the
// transaction associated to the result.
func (res TransactionResult) GetTransaction() validation.Transaction {
	return res.tx
}

// GetStatus implements validation.TransactionResult. It returns true if the
// transaction has been accepted, otherwise false with the reason.
func (res TransactionResult) GetStatus() (bool, string) {
	return res.accepted, res.reason
}

// GetOperationResults implements validation.TransactionResult. It returns the
// results of the operations that have been processed.
func (res TransactionResult) GetOperationResults() []*operation.Result {
	return append([]*operation.Result{}, res.ops...)
}

// Data is the result of a standard validation.
//
// - implements validation.Data
type Data struct {
	txs []TransactionResult
}

// NewData creates a new data from a list of transaction results.
func NewData(results []TransactionResult) Data {
	return Data{
		txs: results,
	}
}

// GetTransactionResults implements validation.Data. It returns the
// transaction results.
func (d Data) GetTransactionResults() []validation.TransactionResult {
	res := make([]validation.TransactionResult, len(d.txs))
	for i, r := range d.txs {
		res[i] = r
	}

	return res
}

// Fingerprint implements validation.Data. It writes a deterministic binary
// representation of the data.
func (d Data) Fingerprint(w io.Writer) error {
	for _, res := range d.txs {
		_, err := w.Write(res.tx.GetID())
		if err != nil {
			return xerrors.Errorf("couldn't write tx: %v", err)
		}

		bit := []byte{0}
		if res.accepted {
			bit[0] = 1
		}

		_, err = w.Write(bit)
		if err != nil {
			return xerrors.Errorf("couldn't write accepted: %v", err)
		}

		for _, op := range res.ops {
			buffer := make([]byte, 12)
			binary.LittleEndian.PutUint32(buffer, uint32(op.GetCode()))
			binary.LittleEndian.PutUint32(buffer[4:], uint32(op.GetKind()))
			binary.LittleEndian.PutUint32(buffer[8:], uint32(op.GetInnerCode()))

			_, err = w.Write(buffer)
			if err != nil {
				return xerrors.Errorf("couldn't write operation result: %v", err)
			}
		}
	}

	return nil
}
