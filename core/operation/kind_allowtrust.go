package operation

import (
	"go.dedis.ch/opcore/core/access"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
)

const (
	// AllowTrustMalformed means the asset code is invalid.
	AllowTrustMalformed InnerCode = -1 - iota
	// AllowTrustNoTrustLine means the trustor has no line for the asset.
	AllowTrustNoTrustLine
	// AllowTrustTrustNotRequired means the acting account does not require
	// authorization.
	AllowTrustTrustNotRequired
	// AllowTrustCantRevoke means the acting account cannot revoke an
	// authorization.
	AllowTrustCantRevoke
	// AllowTrustSelfNotAllowed means the trustor is the acting account.
	AllowTrustSelfNotAllowed
)

var allowTrustCodes = map[InnerCode]string{
	InnerSuccess:               "success",
	AllowTrustMalformed:        "malformed",
	AllowTrustNoTrustLine:      "no trust line",
	AllowTrustTrustNotRequired: "trust not required",
	AllowTrustCantRevoke:       "cannot revoke",
	AllowTrustSelfNotAllowed:   "self not allowed",
}

// AllowTrust is the body of an operation that authorizes, or revokes, the
// trust line of the trustor for an asset issued by the acting account.
type AllowTrust struct {
	Trustor   ledger.AccountID `cbor:"1,keyasint"`
	AssetCode string           `cbor:"2,keyasint"`
	Authorize bool             `cbor:"3,keyasint"`
}

// Kind implements operation.Body.
func (AllowTrust) Kind() Kind {
	return KindAllowTrust
}

type allowTrust struct {
	base
	body AllowTrust
}

func newAllowTrust(f *Frame) (Executor, error) {
	body, ok := f.op.Body.(AllowTrust)
	if !ok {
		return nil, &BodyTypeError{Kind: KindAllowTrust, Body: f.op.Body}
	}

	return &allowTrust{base: base{Frame: f}, body: body}, nil
}

// Threshold implements operation.Executor. It returns the low threshold.
func (e *allowTrust) Threshold() access.Level {
	return access.LevelLow
}

func (e *allowTrust) CheckValid(ctx Context) bool {
	asset := ledger.NewCredit(e.body.AssetCode, e.GetSourceID())
	if asset.IsNative() || !asset.IsValid() {
		return e.Fail(AllowTrustMalformed)
	}

	if e.body.Trustor == e.GetSourceID() {
		return e.Fail(AllowTrustSelfNotAllowed)
	}

	return true
}

func (e *allowTrust) Apply(delta store.Snapshot, ctx Context) bool {
	source := e.GetSource()

	if !source.IsAuthRequired() {
		return e.Fail(AllowTrustTrustNotRequired)
	}

	if !e.body.Authorize && !source.IsAuthRevocable() {
		return e.Fail(AllowTrustCantRevoke)
	}

	asset := ledger.NewCredit(e.body.AssetCode, source.ID)

	line := mustLoadTrustLine(delta, e.body.Trustor, asset)
	if line == nil {
		return e.Fail(AllowTrustNoTrustLine)
	}

	line.Authorized = e.body.Authorize
	mustStoreTrustLine(delta, line)

	return true
}
