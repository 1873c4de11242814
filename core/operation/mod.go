// Package operation implements the execution core of the operations of a
// transaction.
//
// Every kind of operation goes through the same two-phase lifecycle. The
// handler first runs the checks shared by all the kinds: it resolves the
// acting account and verifies that the signatures of the parent transaction
// reach the threshold the operation requires. It then runs the checks of the
// kind and, when executed against a delta, the mutation of the kind.
//
// The outcome of a handler is always written to its result. Two kinds of
// failures exist. A result code reports an expected outcome of an invalid
// input and is never an error. An integration error, like an unknown kind or
// an unexpected result of a synthetic operation, is a bug of the caller and
// the handler panics with a typed error.
package operation

import (
	"encoding/binary"
	"fmt"
	"io"

	"go.dedis.ch/opcore/core/access"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
	"golang.org/x/xerrors"
)

// Kind is the discriminant of an operation.
type Kind int

const (
	// KindCreateAccount creates and funds a new account.
	KindCreateAccount Kind = iota

	// KindPayment sends an amount of an asset to an account.
	KindPayment

	// KindChangeTrust creates, updates or removes a trust line.
	KindChangeTrust

	// KindAllowTrust authorizes or revokes a trust line of an issued asset.
	KindAllowTrust

	// KindSetOptions updates the signers, thresholds and flags of an account.
	KindSetOptions

	// KindAccountMerge transfers the balance of an account and deletes it.
	KindAccountMerge

	// KindManageData creates, updates or removes a data entry.
	KindManageData
)

var kindNames = map[Kind]string{
	KindCreateAccount: "create_account",
	KindPayment:       "payment",
	KindChangeTrust:   "change_trust",
	KindAllowTrust:    "allow_trust",
	KindSetOptions:    "set_options",
	KindAccountMerge:  "account_merge",
	KindManageData:    "manage_data",
}

// String implements fmt.Stringer. It returns the name of the kind.
func (k Kind) String() string {
	name, found := kindNames[k]
	if !found {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return name
}

// Body is the content of an operation specific to its kind.
type Body interface {
	Kind() Kind
}

// Operation is a kind-tagged action of a transaction. The source is the
// optional acting account; the source of the parent transaction is used when
// it is nil.
type Operation struct {
	Source *ledger.AccountID
	Body   Body
}

// NewOperation returns an operation without an explicit acting account.
func NewOperation(body Body) Operation {
	return Operation{Body: body}
}

// NewOperationFrom returns an operation acting on behalf of the account.
func NewOperationFrom(source ledger.AccountID, body Body) Operation {
	return Operation{Source: &source, Body: body}
}

// Kind returns the discriminant of the operation, or -1 without a body.
func (op Operation) Kind() Kind {
	if op.Body == nil {
		return Kind(-1)
	}

	return op.Body.Kind()
}

// Fingerprint writes a deterministic binary representation of the operation.
func (op Operation) Fingerprint(w io.Writer) error {
	buffer := make([]byte, 4)
	binary.LittleEndian.PutUint32(buffer, uint32(op.Kind()))

	if op.Source != nil {
		buffer = append(buffer, 1)
		buffer = append(buffer, op.Source[:]...)
	} else {
		buffer = append(buffer, 0)
	}

	_, err := w.Write(buffer)
	if err != nil {
		return xerrors.Errorf("couldn't write header: %v", err)
	}

	data, err := ledger.Marshal(op.Body)
	if err != nil {
		return xerrors.Errorf("couldn't encode body: %v", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return xerrors.Errorf("couldn't write body: %v", err)
	}

	return nil
}

// Code is the top-level code of a result.
type Code int

const (
	// CodePending is the code of a result not yet processed.
	CodePending Code = iota

	// CodeInner means that the operation passed the shared checks. The
	// inner code of the kind tells the actual outcome.
	CodeInner

	// CodeNoAccount means that the acting account does not exist.
	CodeNoAccount

	// CodeBadAuth means that the signatures do not reach the threshold.
	CodeBadAuth
)

// String implements fmt.Stringer.
func (c Code) String() string {
	switch c {
	case CodePending:
		return "pending"
	case CodeInner:
		return "inner"
	case CodeNoAccount:
		return "no account"
	case CodeBadAuth:
		return "bad authorization"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// InnerCode is the outcome of an operation specific to its kind. Zero is the
// success of every kind and failures are negative.
type InnerCode int32

// InnerSuccess is the inner code of a successful operation.
const InnerSuccess InnerCode = 0

var innerCodeNames = map[Kind]map[InnerCode]string{
	KindCreateAccount: createAccountCodes,
	KindPayment:       paymentCodes,
	KindChangeTrust:   changeTrustCodes,
	KindAllowTrust:    allowTrustCodes,
	KindSetOptions:    setOptionsCodes,
	KindAccountMerge:  accountMergeCodes,
	KindManageData:    manageDataCodes,
}

// Result is the outcome of an operation. Exactly one terminal write happens
// per validate or execute cycle. Once inner, the kind of the result is the
// kind of the operation.
type Result struct {
	code  Code
	kind  Kind
	inner InnerCode
}

// GetCode returns the top-level code.
func (r *Result) GetCode() Code {
	return r.code
}

// GetKind returns the kind of the inner result. It is only meaningful when
// the code is inner.
func (r *Result) GetKind() Kind {
	return r.kind
}

// GetInnerCode returns the code of the kind. It is only meaningful when the
// code is inner.
func (r *Result) GetInnerCode() InnerCode {
	return r.inner
}

// IsSuccess returns true if the operation succeeded.
func (r *Result) IsSuccess() bool {
	return r.code == CodeInner && r.inner == InnerSuccess
}

// String implements fmt.Stringer.
func (r *Result) String() string {
	if r.code != CodeInner {
		return r.code.String()
	}

	name, found := innerCodeNames[r.kind][r.inner]
	if !found {
		name = fmt.Sprintf("%d", r.inner)
	}

	return fmt.Sprintf("%v: %s", r.kind, name)
}

func (r *Result) setCode(code Code) {
	r.code = code
}

func (r *Result) setInner(kind Kind) {
	r.code = CodeInner
	r.kind = kind
	r.inner = InnerSuccess
}

func (r *Result) setInnerCode(code InnerCode) {
	r.inner = code
}

// Context is the environment of the execution of the operations of one
// transaction.
type Context struct {
	// Ledger is the committed state used to resolve the acting account when
	// the operation is only validated.
	Ledger store.Readable

	// Params are the ledger-wide parameters.
	Params ledger.Params

	// Signers is the set of signers already counted by the previous
	// operations of the transaction. It is updated in place and must be set.
	Signers *access.SignerSet
}

// NewContext returns a context for a new transaction.
func NewContext(r store.Readable, params ledger.Params) Context {
	return Context{
		Ledger:  r,
		Params:  params,
		Signers: access.NewSignerSet(),
	}
}

// Handler is the instance of an operation for one validate or execute cycle.
type Handler interface {
	// ValidateOnly runs the checks without mutating the ledger. It is used
	// for admission when previous operations might still change the state
	// before the operation is actually applied.
	ValidateOnly(ctx Context) bool

	// Execute runs the checks against the delta and, on success, applies
	// the mutation of the operation to it.
	Execute(delta store.Snapshot, ctx Context) bool

	// RequiredThreshold returns the signing threshold the acting account must
	// reach.
	RequiredThreshold() access.Level

	// ResultCode returns the top-level code of the result.
	ResultCode() Code

	// GetResult returns the result the handler writes to.
	GetResult() *Result

	// GetFee returns the fee binding of the operation.
	GetFee() Fee
}
