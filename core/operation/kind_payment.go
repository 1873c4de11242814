package operation

import (
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
)

const (
	// PaymentMalformed means the amount is not positive or the asset is
	// invalid.
	PaymentMalformed InnerCode = -1 - iota
	// PaymentUnderfunded means the acting account does not hold the amount.
	PaymentUnderfunded
	// PaymentSrcNoTrust means the acting account has no trust line for the
	// asset.
	PaymentSrcNoTrust
	// PaymentSrcNotAuthorized means the trust line of the acting account is
	// not authorized.
	PaymentSrcNotAuthorized
	// PaymentNoDestination means the destination does not exist.
	PaymentNoDestination
	// PaymentNoTrust means the destination has no trust line and none could
	// be created.
	PaymentNoTrust
	// PaymentNotAuthorized means the trust line of the destination is not
	// authorized.
	PaymentNotAuthorized
	// PaymentLineFull means the destination cannot receive the amount.
	PaymentLineFull
	// PaymentNoIssuer means the issuer of the asset does not exist.
	PaymentNoIssuer
)

var paymentCodes = map[InnerCode]string{
	InnerSuccess:            "success",
	PaymentMalformed:        "malformed",
	PaymentUnderfunded:      "underfunded",
	PaymentSrcNoTrust:       "source has no trust",
	PaymentSrcNotAuthorized: "source not authorized",
	PaymentNoDestination:    "no destination",
	PaymentNoTrust:          "no trust",
	PaymentNotAuthorized:    "not authorized",
	PaymentLineFull:         "line full",
	PaymentNoIssuer:         "no issuer",
}

// Payment is the body of an operation that sends an amount of an asset to an
// account. A destination without a trust line for a credit asset gets one
// with the maximum limit.
type Payment struct {
	Destination ledger.AccountID `cbor:"1,keyasint"`
	Asset       ledger.Asset     `cbor:"2,keyasint"`
	Amount      int64            `cbor:"3,keyasint"`
}

// Kind implements operation.Body.
func (Payment) Kind() Kind {
	return KindPayment
}

type payment struct {
	base
	body Payment
}

func newPayment(f *Frame) (Executor, error) {
	body, ok := f.op.Body.(Payment)
	if !ok {
		return nil, &BodyTypeError{Kind: KindPayment, Body: f.op.Body}
	}

	return &payment{base: base{Frame: f}, body: body}, nil
}

func (e *payment) CheckValid(ctx Context) bool {
	if e.body.Amount <= 0 || !e.body.Asset.IsValid() {
		return e.Fail(PaymentMalformed)
	}

	return true
}

func (e *payment) Apply(delta store.Snapshot, ctx Context) bool {
	source := e.GetSource()

	dest := source
	if e.body.Destination != source.ID {
		dest = mustLoadAccount(delta, e.body.Destination)
		if dest == nil {
			return e.Fail(PaymentNoDestination)
		}
	}

	if e.body.Asset.IsNative() {
		return e.applyNative(delta, ctx, source, dest)
	}

	return e.applyCredit(delta, ctx, source, dest)
}

func (e *payment) applyNative(delta store.Snapshot, ctx Context, source, dest *ledger.Account) bool {
	amount := e.body.Amount

	if source.Balance-amount < source.GetMinBalance(ctx.Params) {
		return e.Fail(PaymentUnderfunded)
	}

	if dest.Balance > ctx.Params.MaxAmount-amount {
		return e.Fail(PaymentLineFull)
	}

	source.Balance -= amount
	dest.Balance += amount

	mustStoreAccount(delta, source)
	mustStoreAccount(delta, dest)

	return true
}

func (e *payment) applyCredit(delta store.Snapshot, ctx Context, source, dest *ledger.Account) bool {
	asset := e.body.Asset
	amount := e.body.Amount

	// The issuer creates the asset when it sends it.
	var srcLine *ledger.TrustLine
	if asset.Issuer != source.ID {
		srcLine = mustLoadTrustLine(delta, source.ID, asset)
		if srcLine == nil {
			return e.Fail(PaymentSrcNoTrust)
		}

		if !srcLine.Authorized {
			return e.Fail(PaymentSrcNotAuthorized)
		}

		if srcLine.Balance < amount {
			return e.Fail(PaymentUnderfunded)
		}
	}

	if mustLoadAccount(delta, asset.Issuer) == nil {
		return e.Fail(PaymentNoIssuer)
	}

	// The issuer destroys the asset when it receives it.
	var destLine *ledger.TrustLine
	if asset.Issuer != dest.ID {
		if dest == source {
			destLine = srcLine
		} else {
			destLine = mustLoadTrustLine(delta, dest.ID, asset)
		}

		if destLine == nil {
			destLine = EnsureTrustLine(delta, ctx, e.tx, dest, asset)
			if destLine == nil {
				return e.Fail(PaymentNoTrust)
			}
		}

		if !destLine.Authorized {
			return e.Fail(PaymentNotAuthorized)
		}

		if destLine.GetAvailableLimit() < amount {
			return e.Fail(PaymentLineFull)
		}
	}

	if srcLine != nil {
		srcLine.Balance -= amount
		mustStoreTrustLine(delta, srcLine)
	}

	if destLine != nil {
		destLine.Balance += amount
		mustStoreTrustLine(delta, destLine)
	}

	return true
}
