package operation

import (
	"go.dedis.ch/opcore/core/access"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
)

const (
	// AccountMergeMalformed means the destination is the acting account.
	AccountMergeMalformed InnerCode = -1 - iota
	// AccountMergeNoAccount means the destination does not exist.
	AccountMergeNoAccount
	// AccountMergeHasSubEntries means the acting account still owns entries.
	AccountMergeHasSubEntries
	// AccountMergeDestFull means the destination cannot receive the balance.
	AccountMergeDestFull
)

var accountMergeCodes = map[InnerCode]string{
	InnerSuccess:              "success",
	AccountMergeMalformed:     "malformed",
	AccountMergeNoAccount:     "no account",
	AccountMergeHasSubEntries: "has sub-entries",
	AccountMergeDestFull:      "destination full",
}

// AccountMerge is the body of an operation that transfers the balance of the
// acting account to the destination and deletes it.
type AccountMerge struct {
	Destination ledger.AccountID `cbor:"1,keyasint"`
}

// Kind implements operation.Body.
func (AccountMerge) Kind() Kind {
	return KindAccountMerge
}

type accountMerge struct {
	base
	body AccountMerge
}

func newAccountMerge(f *Frame) (Executor, error) {
	body, ok := f.op.Body.(AccountMerge)
	if !ok {
		return nil, &BodyTypeError{Kind: KindAccountMerge, Body: f.op.Body}
	}

	return &accountMerge{base: base{Frame: f}, body: body}, nil
}

// Threshold implements operation.Executor. It returns the high threshold.
func (e *accountMerge) Threshold() access.Level {
	return access.LevelHigh
}

func (e *accountMerge) CheckValid(ctx Context) bool {
	if e.body.Destination == e.GetSourceID() {
		return e.Fail(AccountMergeMalformed)
	}

	return true
}

func (e *accountMerge) Apply(delta store.Snapshot, ctx Context) bool {
	source := e.GetSource()

	dest := mustLoadAccount(delta, e.body.Destination)
	if dest == nil {
		return e.Fail(AccountMergeNoAccount)
	}

	if source.NumSubEntries > 0 {
		return e.Fail(AccountMergeHasSubEntries)
	}

	if dest.Balance > ctx.Params.MaxAmount-source.Balance {
		return e.Fail(AccountMergeDestFull)
	}

	dest.Balance += source.Balance
	mustStoreAccount(delta, dest)

	mustDeleteAccount(delta, source.ID)

	return true
}
