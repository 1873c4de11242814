package operation

import (
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
)

const (
	// CreateAccountMalformed means the starting balance is not positive or
	// the destination is the acting account.
	CreateAccountMalformed InnerCode = -1 - iota
	// CreateAccountUnderfunded means the acting account cannot afford the
	// starting balance.
	CreateAccountUnderfunded
	// CreateAccountLowReserve means the starting balance is under the
	// minimum balance of an account.
	CreateAccountLowReserve
	// CreateAccountAlreadyExists means the destination exists.
	CreateAccountAlreadyExists
)

var createAccountCodes = map[InnerCode]string{
	InnerSuccess:               "success",
	CreateAccountMalformed:     "malformed",
	CreateAccountUnderfunded:   "underfunded",
	CreateAccountLowReserve:    "low reserve",
	CreateAccountAlreadyExists: "already exists",
}

// CreateAccount is the body of an operation that creates an account funded by
// the acting account.
type CreateAccount struct {
	Destination     ledger.AccountID `cbor:"1,keyasint"`
	StartingBalance int64            `cbor:"2,keyasint"`
}

// Kind implements operation.Body.
func (CreateAccount) Kind() Kind {
	return KindCreateAccount
}

type createAccount struct {
	base
	body CreateAccount
}

func newCreateAccount(f *Frame) (Executor, error) {
	body, ok := f.op.Body.(CreateAccount)
	if !ok {
		return nil, &BodyTypeError{Kind: KindCreateAccount, Body: f.op.Body}
	}

	return &createAccount{base: base{Frame: f}, body: body}, nil
}

func (e *createAccount) CheckValid(ctx Context) bool {
	if e.body.StartingBalance <= 0 || e.body.Destination == e.GetSourceID() {
		return e.Fail(CreateAccountMalformed)
	}

	return true
}

func (e *createAccount) Apply(delta store.Snapshot, ctx Context) bool {
	if mustLoadAccount(delta, e.body.Destination) != nil {
		return e.Fail(CreateAccountAlreadyExists)
	}

	if e.body.StartingBalance < ledger.MinBalance(ctx.Params, 0) {
		return e.Fail(CreateAccountLowReserve)
	}

	source := e.GetSource()

	if source.Balance-e.body.StartingBalance < source.GetMinBalance(ctx.Params) {
		return e.Fail(CreateAccountUnderfunded)
	}

	source.Balance -= e.body.StartingBalance
	mustStoreAccount(delta, source)

	mustStoreAccount(delta, ledger.NewAccount(e.body.Destination, e.body.StartingBalance))

	return true
}
