package operation

import (
	"fmt"

	"go.dedis.ch/opcore"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
	"go.dedis.ch/opcore/core/txn"
)

// EnsureTrustLine creates the trust line of the account for the asset by
// running a synthetic ChangeTrust operation with the maximum limit. The
// operation is not charged and the authorization is not verified again as
// the account is already held by the caller. The account is updated in place.
//
// It returns nil when the issuer does not exist or when the account cannot
// afford the reserve of the line. It panics with an UnexpectedCodeError for
// any other failure as the caller controls every input of the operation.
func EnsureTrustLine(delta store.Snapshot, ctx Context, tx txn.Transaction,
	account *ledger.Account, asset ledger.Asset) *ledger.TrustLine {

	op := NewOperationFrom(account.ID, ChangeTrust{
		Line:  asset,
		Limit: ctx.Params.MaxAmount,
	})

	frame := &Frame{
		op:     op,
		result: &Result{},
		fee:    NoFee(),
		tx:     tx,
		logger: opcore.Logger.With().Str("kind", KindChangeTrust.String()).Logger(),
	}

	impl := &changeTrust{
		base: base{Frame: frame},
		body: op.Body.(ChangeTrust),
	}

	frame.impl = impl

	if runSynthetic(frame, delta, ctx, account) {
		return impl.GetTrustLine()
	}

	res := frame.GetResult()

	if res.GetCode() == CodeInner {
		switch res.GetInnerCode() {
		case ChangeTrustNoIssuer, ChangeTrustLowReserve:
			return nil
		}
	}

	promSyntheticFailure.WithLabelValues(KindChangeTrust.String(), codeLabel(res)).Inc()

	panic(&UnexpectedCodeError{
		Kind:  KindChangeTrust,
		Code:  res.GetCode(),
		Inner: res.GetInnerCode(),
	})
}

// runSynthetic binds the account to the frame and runs the checks and the
// mutation of the kind without the shared checks.
func runSynthetic(frame *Frame, delta store.Snapshot, ctx Context, account *ledger.Account) bool {
	frame.source = account
	frame.result.setInner(frame.op.Kind())

	if !frame.impl.CheckValid(ctx) {
		return false
	}

	return frame.impl.Apply(delta, ctx)
}

func codeLabel(res *Result) string {
	if res.GetCode() != CodeInner {
		return res.GetCode().String()
	}

	return fmt.Sprintf("%d", res.GetInnerCode())
}
