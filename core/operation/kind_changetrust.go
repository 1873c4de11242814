package operation

import (
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
)

const (
	// ChangeTrustMalformed means the limit is negative, or the asset is
	// native, invalid or issued by the acting account.
	ChangeTrustMalformed InnerCode = -1 - iota
	// ChangeTrustNoIssuer means the issuer of the asset does not exist.
	ChangeTrustNoIssuer
	// ChangeTrustInvalidLimit means the limit is under the balance of the
	// line, or zero for a line that does not exist.
	ChangeTrustInvalidLimit
	// ChangeTrustLowReserve means the acting account cannot afford the
	// reserve of a new line.
	ChangeTrustLowReserve
)

var changeTrustCodes = map[InnerCode]string{
	InnerSuccess:            "success",
	ChangeTrustMalformed:    "malformed",
	ChangeTrustNoIssuer:     "no issuer",
	ChangeTrustInvalidLimit: "invalid limit",
	ChangeTrustLowReserve:   "low reserve",
}

// ChangeTrust is the body of an operation that creates or updates the trust
// line of the acting account for an asset. A zero limit removes the line.
type ChangeTrust struct {
	Line  ledger.Asset `cbor:"1,keyasint"`
	Limit int64        `cbor:"2,keyasint"`
}

// Kind implements operation.Body.
func (ChangeTrust) Kind() Kind {
	return KindChangeTrust
}

type changeTrust struct {
	base
	body ChangeTrust
	line *ledger.TrustLine
}

func newChangeTrust(f *Frame) (Executor, error) {
	body, ok := f.op.Body.(ChangeTrust)
	if !ok {
		return nil, &BodyTypeError{Kind: KindChangeTrust, Body: f.op.Body}
	}

	return &changeTrust{base: base{Frame: f}, body: body}, nil
}

// GetTrustLine returns the line written by the last successful execution, or
// nil when it was removed.
func (e *changeTrust) GetTrustLine() *ledger.TrustLine {
	return e.line
}

func (e *changeTrust) CheckValid(ctx Context) bool {
	asset := e.body.Line

	if e.body.Limit < 0 || asset.IsNative() || !asset.IsValid() {
		return e.Fail(ChangeTrustMalformed)
	}

	if asset.Issuer == e.GetSourceID() {
		return e.Fail(ChangeTrustMalformed)
	}

	return true
}

func (e *changeTrust) Apply(delta store.Snapshot, ctx Context) bool {
	source := e.GetSource()
	asset := e.body.Line

	issuer := mustLoadAccount(delta, asset.Issuer)
	if issuer == nil {
		return e.Fail(ChangeTrustNoIssuer)
	}

	line := mustLoadTrustLine(delta, source.ID, asset)
	if line != nil {
		if e.body.Limit < line.Balance {
			return e.Fail(ChangeTrustInvalidLimit)
		}

		if e.body.Limit == 0 {
			mustDeleteTrustLine(delta, source.ID, asset)

			source.NumSubEntries--
			mustStoreAccount(delta, source)

			return true
		}

		line.Limit = e.body.Limit
		mustStoreTrustLine(delta, line)

		e.line = line

		return true
	}

	if e.body.Limit == 0 {
		return e.Fail(ChangeTrustInvalidLimit)
	}

	if !source.CanAddSubEntry(ctx.Params) {
		return e.Fail(ChangeTrustLowReserve)
	}

	line = &ledger.TrustLine{
		AccountID:  source.ID,
		Asset:      asset,
		Limit:      e.body.Limit,
		Authorized: !issuer.IsAuthRequired(),
	}

	source.NumSubEntries++
	mustStoreAccount(delta, source)
	mustStoreTrustLine(delta, line)

	e.line = line

	return true
}
