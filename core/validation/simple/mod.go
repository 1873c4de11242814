// Package simple implements a simple validation service.
//
// Each transaction is processed in two layers on top of the snapshot. The
// first one charges the fees to the source of the transaction and the second
// one accumulates the mutations of the operations. The fees are kept even
// when an operation fails, while the mutations of the operations are only
// applied when all of them succeed.
package simple

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.dedis.ch/opcore"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/operation"
	"go.dedis.ch/opcore/core/store"
	"go.dedis.ch/opcore/core/store/mem"
	"go.dedis.ch/opcore/core/validation"
	"golang.org/x/xerrors"
)

var promTxs = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "opcore_validation_transactions_total",
	Help: "total number of transactions processed",
}, []string{"accepted"})

func init() {
	opcore.PromCollectors = append(opcore.PromCollectors, promTxs)
}

// Service is a standard validation service that will process the batch and
// update the snapshot accordingly.
//
// - implements validation.Service
type Service struct {
	registry *operation.Registry
	params   ledger.Params
	logger   zerolog.Logger
}

// NewService creates a new validation service.
func NewService(reg *operation.Registry, params ledger.Params) Service {
	return Service{
		registry: reg,
		params:   params,
		logger:   opcore.Logger,
	}
}

// Validate implements validation.Service. It processes the list of transactions
// while updating the snapshot then returns a bundle of the transaction results.
// An error is returned when a transaction cannot be processed because of a
// failure unrelated to the transaction itself. The snapshot might then be
// partially updated by the previous transactions.
func (s Service) Validate(snap store.Snapshot, txs []validation.Transaction) (validation.Data, error) {
	logger := s.logger.With().Str("batch", xid.New().String()).Logger()

	results := make([]TransactionResult, len(txs))
	accepted := 0

	for i, tx := range txs {
		res, err := s.process(snap, tx)
		if err != nil {
			// This is a critical error unrelated to the transaction itself.
			return nil, xerrors.Errorf("tx %#x: %v", tx.GetID(), err)
		}

		results[i] = res

		ok, reason := res.GetStatus()
		promTxs.WithLabelValues(fmt.Sprintf("%t", ok)).Inc()

		if ok {
			accepted++
		} else {
			logger.Debug().Hex("tx", tx.GetID()).Str("reason", reason).Msg("transaction rejected")
		}
	}

	logger.Info().
		Int("txs", len(txs)).
		Int("accepted", accepted).
		Msg("batch validated")

	return NewData(results), nil
}

// Check implements validation.Service. It validates every operation of the
// transaction against the ledger without applying any of them. The signers are
// consumed across the operations the same way as when the transaction is
// applied.
func (s Service) Check(r store.Readable, tx validation.Transaction) (res TransactionResult, err error) {
	defer func() {
		rec := recover()
		if rec != nil {
			err = xerrors.Errorf("failed to check tx: %v", rec)
		}
	}()

	ctx := operation.NewContext(r, s.params)
	ops := tx.GetOperations()

	if len(ops) == 0 {
		return NewTransactionResult(tx, false, "no operation", nil), nil
	}

	results := make([]*operation.Result, 0, len(ops))

	for i, op := range ops {
		h := s.registry.Instantiate(op, nil, tx.GetFee(), tx)
		results = append(results, h.GetResult())

		if !h.ValidateOnly(ctx) {
			reason := fmt.Sprintf("operation %d is invalid: %v", i, h.GetResult())
			return NewTransactionResult(tx, false, reason, results), nil
		}
	}

	return NewTransactionResult(tx, true, "", results), nil
}

func (s Service) process(snap store.Snapshot, tx validation.Transaction) (res TransactionResult, err error) {
	defer func() {
		rec := recover()
		if rec != nil {
			err = xerrors.Errorf("failed to execute tx: %v", rec)
		}
	}()

	feeDelta := mem.NewDelta(snap)

	reason, err := s.chargeFee(feeDelta, tx)
	if err != nil {
		return res, xerrors.Errorf("failed to charge fee: %v", err)
	}

	if reason != "" {
		return NewTransactionResult(tx, false, reason, nil), nil
	}

	res = s.execute(feeDelta, tx)

	err = feeDelta.Apply(snap)
	if err != nil {
		return res, xerrors.Errorf("failed to commit: %v", err)
	}

	return res, nil
}

// execute runs the operations of the transaction in a delta on top of the fee
// delta. The mutations are kept only when all the operations succeed.
func (s Service) execute(feeDelta *mem.Delta, tx validation.Transaction) TransactionResult {
	ops := tx.GetOperations()
	if len(ops) == 0 {
		return NewTransactionResult(tx, false, "no operation", nil)
	}

	opDelta := mem.NewDelta(feeDelta)
	ctx := operation.NewContext(feeDelta, s.params)

	results := make([]*operation.Result, 0, len(ops))

	for i, op := range ops {
		h := s.registry.Instantiate(op, nil, tx.GetFee(), tx)
		results = append(results, h.GetResult())

		if !h.Execute(opDelta, ctx) {
			reason := fmt.Sprintf("operation %d failed: %v", i, h.GetResult())
			return NewTransactionResult(tx, false, reason, results)
		}
	}

	err := opDelta.Apply(feeDelta)
	if err != nil {
		panic(xerrors.Errorf("failed to apply operations: %v", err))
	}

	return NewTransactionResult(tx, true, "", results)
}

// chargeFee deducts the fees of the operations from the source account of the
// transaction. It returns a reason when the transaction cannot pay for them.
func (s Service) chargeFee(delta *mem.Delta, tx validation.Transaction) (string, error) {
	fee := tx.GetFee()
	if fee.IsNone() {
		return "", nil
	}

	total, ok := fee.Total(len(tx.GetOperations()))
	if !ok {
		return fmt.Sprintf("invalid fee of %d per operation", fee.Amount), nil
	}

	acc, err := ledger.LoadAccount(delta, tx.GetSourceAccountID())
	if err != nil {
		return "", xerrors.Errorf("failed to load source: %v", err)
	}

	if acc == nil {
		return "source account not found", nil
	}

	if acc.Balance < total {
		return fmt.Sprintf("insufficient balance to pay fee of %d", total), nil
	}

	acc.Balance -= total

	err = ledger.StoreAccount(delta, acc)
	if err != nil {
		return "", xerrors.Errorf("failed to store source: %v", err)
	}

	return "", nil
}
