package operation

import (
	"github.com/rs/zerolog"
	"go.dedis.ch/opcore/core/access"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
	"go.dedis.ch/opcore/core/txn"
	"golang.org/x/xerrors"
)

// Executor is the part of a handler specific to a kind of operation.
type Executor interface {
	// Threshold returns the signing threshold the kind requires.
	Threshold() access.Level

	// CheckValid validates the operation without reading the ledger. It
	// sets the inner code of the result on failure.
	CheckValid(ctx Context) bool

	// Apply mutates the delta. The acting account of the frame is resolved
	// and authorized when it is called.
	Apply(delta store.Snapshot, ctx Context) bool
}

// Frame is the handler of an operation for one validate or execute cycle. It
// runs the checks shared by every kind and dispatches to the executor of the
// kind of the operation.
//
// - implements operation.Handler
type Frame struct {
	op     Operation
	result *Result
	fee    Fee
	tx     txn.Transaction
	source *ledger.Account
	logger zerolog.Logger
	impl   Executor
}

// ValidateOnly implements operation.Handler. It runs the shared checks against
// the committed ledger of the context and then the checks of the kind.
func (f *Frame) ValidateOnly(ctx Context) bool {
	return f.validate(ctx, nil)
}

// Execute implements operation.Handler. It runs the shared checks against the
// delta and on success applies the mutation of the kind to it. It panics when
// the delta is missing.
func (f *Frame) Execute(delta store.Snapshot, ctx Context) bool {
	if delta == nil {
		panic(xerrors.New("missing delta to execute the operation"))
	}

	if !f.validate(ctx, delta) {
		return false
	}

	ok := f.impl.Apply(delta, ctx)

	promExecuted.WithLabelValues(f.op.Kind().String(), boolLabel(ok)).Inc()

	f.logger.Debug().
		Str("result", f.result.String()).
		Msg("operation executed")

	return ok
}

// RequiredThreshold implements operation.Handler.
func (f *Frame) RequiredThreshold() access.Level {
	return f.impl.Threshold()
}

// ResultCode implements operation.Handler.
func (f *Frame) ResultCode() Code {
	return f.result.GetCode()
}

// GetResult implements operation.Handler.
func (f *Frame) GetResult() *Result {
	return f.result
}

// GetFee implements operation.Handler.
func (f *Frame) GetFee() Fee {
	return f.fee
}

// GetOperation returns the operation of the frame.
func (f *Frame) GetOperation() Operation {
	return f.op
}

// GetSourceID returns the identifier of the acting account. The override of
// the operation takes priority over the source of the transaction.
func (f *Frame) GetSourceID() ledger.AccountID {
	if f.op.Source != nil {
		return *f.op.Source
	}

	return f.tx.GetSourceAccountID()
}

// GetSource returns the acting account resolved by the last cycle, or nil.
func (f *Frame) GetSource() *ledger.Account {
	return f.source
}

// Fail sets the inner code of the result and returns false.
func (f *Frame) Fail(code InnerCode) bool {
	f.result.setInnerCode(code)
	return false
}

// validate runs the shared checks followed by the checks of the kind. A nil
// delta means that the operation is only validated.
func (f *Frame) validate(ctx Context, delta store.Snapshot) bool {
	forApply := delta != nil

	var r store.Readable = ctx.Ledger
	if forApply {
		r = delta
	}

	id := f.GetSourceID()

	f.source = mustLoadAccount(r, id)
	if f.source == nil {
		if forApply || f.op.Source == nil {
			f.result.setCode(CodeNoAccount)
			promInvalid.WithLabelValues(reasonNoAccount).Inc()

			f.logger.Debug().Stringer("account", id).Msg("acting account not found")

			return false
		}

		// The account might be created by a previous operation of the
		// transaction, so only the master key can be verified.
		f.source = ledger.NewAuthOnlyAccount(id)
	}

	if !f.checkSignature(ctx) {
		f.result.setCode(CodeBadAuth)
		promInvalid.WithLabelValues(reasonBadAuth).Inc()

		f.logger.Debug().
			Stringer("account", id).
			Stringer("threshold", f.impl.Threshold()).
			Msg("signatures below threshold")

		return false
	}

	if !forApply {
		f.source = nil
	}

	f.result.setInner(f.op.Kind())

	return f.impl.CheckValid(ctx)
}

func (f *Frame) checkSignature(ctx Context) bool {
	if ctx.Signers == nil {
		panic(xerrors.New("missing signers set in the context"))
	}

	weight := f.source.GetThreshold(f.impl.Threshold())

	return f.tx.CheckSignature(f.source, weight, ctx.Signers)
}

// base provides the default threshold to the executors of the kinds.
type base struct {
	*Frame
}

// Threshold implements operation.Executor. It returns the medium threshold.
func (base) Threshold() access.Level {
	return access.LevelMedium
}

// The ledger storage is expected to be always available during the execution
// of a transaction. A failure is not attributable to the user and aborts the
// processing.

func mustLoadAccount(r store.Readable, id ledger.AccountID) *ledger.Account {
	acc, err := ledger.LoadAccount(r, id)
	if err != nil {
		panic(xerrors.Errorf("failed to load account %v: %v", id, err))
	}

	return acc
}

func mustStoreAccount(s store.Snapshot, acc *ledger.Account) {
	err := ledger.StoreAccount(s, acc)
	if err != nil {
		panic(xerrors.Errorf("failed to store account %v: %v", acc.ID, err))
	}
}

func mustDeleteAccount(s store.Snapshot, id ledger.AccountID) {
	err := ledger.DeleteAccount(s, id)
	if err != nil {
		panic(xerrors.Errorf("failed to delete account %v: %v", id, err))
	}
}

func mustLoadTrustLine(r store.Readable, id ledger.AccountID, asset ledger.Asset) *ledger.TrustLine {
	tl, err := ledger.LoadTrustLine(r, id, asset)
	if err != nil {
		panic(xerrors.Errorf("failed to load trust line %v of %v: %v", asset, id, err))
	}

	return tl
}

func mustStoreTrustLine(s store.Snapshot, tl *ledger.TrustLine) {
	err := ledger.StoreTrustLine(s, tl)
	if err != nil {
		panic(xerrors.Errorf("failed to store trust line %v of %v: %v",
			tl.Asset, tl.AccountID, err))
	}
}

func mustDeleteTrustLine(s store.Snapshot, id ledger.AccountID, asset ledger.Asset) {
	err := ledger.DeleteTrustLine(s, id, asset)
	if err != nil {
		panic(xerrors.Errorf("failed to delete trust line %v of %v: %v", asset, id, err))
	}
}

func mustLoadData(r store.Readable, id ledger.AccountID, name string) *ledger.DataEntry {
	entry, err := ledger.LoadData(r, id, name)
	if err != nil {
		panic(xerrors.Errorf("failed to load data %q of %v: %v", name, id, err))
	}

	return entry
}

func mustStoreData(s store.Snapshot, entry *ledger.DataEntry) {
	err := ledger.StoreData(s, entry)
	if err != nil {
		panic(xerrors.Errorf("failed to store data %q of %v: %v",
			entry.Name, entry.AccountID, err))
	}
}

func mustDeleteData(s store.Snapshot, id ledger.AccountID, name string) {
	err := ledger.DeleteData(s, id, name)
	if err != nil {
		panic(xerrors.Errorf("failed to delete data %q of %v: %v", name, id, err))
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}

	return "false"
}
