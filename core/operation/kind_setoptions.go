package operation

import (
	"go.dedis.ch/opcore/core/access"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
)

// MaxHomeDomainLength is the maximum length of the home domain of an account.
const MaxHomeDomainLength = 32

const (
	// SetOptionsLowReserve means the acting account cannot afford the reserve
	// of a new signer.
	SetOptionsLowReserve InnerCode = -1 - iota
	// SetOptionsTooManySigners means the acting account has the maximum
	// number of signers.
	SetOptionsTooManySigners
	// SetOptionsBadFlags means a flag is both set and cleared.
	SetOptionsBadFlags
	// SetOptionsUnknownFlag means a flag is not known.
	SetOptionsUnknownFlag
	// SetOptionsBadSigner means the signer is the master key.
	SetOptionsBadSigner
	// SetOptionsInvalidHomeDomain means the home domain is too long or not
	// printable.
	SetOptionsInvalidHomeDomain
)

var setOptionsCodes = map[InnerCode]string{
	InnerSuccess:                "success",
	SetOptionsLowReserve:        "low reserve",
	SetOptionsTooManySigners:    "too many signers",
	SetOptionsBadFlags:          "bad flags",
	SetOptionsUnknownFlag:       "unknown flag",
	SetOptionsBadSigner:         "bad signer",
	SetOptionsInvalidHomeDomain: "invalid home domain",
}

// SetOptions is the body of an operation that updates the options of the
// acting account. Only the fields that are set are updated. A signer with a
// zero weight is removed.
type SetOptions struct {
	SetFlags     *uint32        `cbor:"1,keyasint,omitempty"`
	ClearFlags   *uint32        `cbor:"2,keyasint,omitempty"`
	MasterWeight *uint8         `cbor:"3,keyasint,omitempty"`
	Low          *uint8         `cbor:"4,keyasint,omitempty"`
	Medium       *uint8         `cbor:"5,keyasint,omitempty"`
	High         *uint8         `cbor:"6,keyasint,omitempty"`
	Signer       *ledger.Signer `cbor:"7,keyasint,omitempty"`
	HomeDomain   *string        `cbor:"8,keyasint,omitempty"`
}

// Kind implements operation.Body.
func (SetOptions) Kind() Kind {
	return KindSetOptions
}

type setOptions struct {
	base
	body SetOptions
}

func newSetOptions(f *Frame) (Executor, error) {
	body, ok := f.op.Body.(SetOptions)
	if !ok {
		return nil, &BodyTypeError{Kind: KindSetOptions, Body: f.op.Body}
	}

	return &setOptions{base: base{Frame: f}, body: body}, nil
}

// Threshold implements operation.Executor. It returns the high threshold when
// the operation changes who can sign for the account.
func (e *setOptions) Threshold() access.Level {
	b := e.body
	if b.MasterWeight != nil || b.Low != nil || b.Medium != nil || b.High != nil || b.Signer != nil {
		return access.LevelHigh
	}

	return access.LevelMedium
}

func (e *setOptions) CheckValid(ctx Context) bool {
	var set, unset uint32
	if e.body.SetFlags != nil {
		set = *e.body.SetFlags
	}
	if e.body.ClearFlags != nil {
		unset = *e.body.ClearFlags
	}

	if (set|unset)&^ledger.MaskAccountFlags != 0 {
		return e.Fail(SetOptionsUnknownFlag)
	}

	if set&unset != 0 {
		return e.Fail(SetOptionsBadFlags)
	}

	if e.body.Signer != nil && e.body.Signer.Key == e.GetSourceID() {
		return e.Fail(SetOptionsBadSigner)
	}

	if e.body.HomeDomain != nil && !isValidHomeDomain(*e.body.HomeDomain) {
		return e.Fail(SetOptionsInvalidHomeDomain)
	}

	return true
}

func (e *setOptions) Apply(delta store.Snapshot, ctx Context) bool {
	source := e.GetSource()

	if e.body.Signer != nil {
		signer := *e.body.Signer

		switch {
		case signer.Weight == 0:
			if source.RemoveSigner(signer.Key) {
				source.NumSubEntries--
			}
		case source.HasSigner(signer.Key):
			source.SetSigner(signer)
		default:
			if len(source.Signers) >= ctx.Params.MaxSigners {
				return e.Fail(SetOptionsTooManySigners)
			}

			if !source.CanAddSubEntry(ctx.Params) {
				return e.Fail(SetOptionsLowReserve)
			}

			source.SetSigner(signer)
			source.NumSubEntries++
		}
	}

	if e.body.ClearFlags != nil {
		source.Flags &^= *e.body.ClearFlags
	}
	if e.body.SetFlags != nil {
		source.Flags |= *e.body.SetFlags
	}

	if e.body.MasterWeight != nil {
		source.Thresholds.Master = *e.body.MasterWeight
	}
	if e.body.Low != nil {
		source.Thresholds.Low = *e.body.Low
	}
	if e.body.Medium != nil {
		source.Thresholds.Medium = *e.body.Medium
	}
	if e.body.High != nil {
		source.Thresholds.High = *e.body.High
	}

	if e.body.HomeDomain != nil {
		source.HomeDomain = *e.body.HomeDomain
	}

	mustStoreAccount(delta, source)

	return true
}

func isValidHomeDomain(domain string) bool {
	if len(domain) > MaxHomeDomainLength {
		return false
	}

	return isPrintable(domain)
}

// isPrintable returns true if the text only contains printable ASCII
// characters.
func isPrintable(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] < 0x20 || text[i] > 0x7e {
			return false
		}
	}

	return true
}
