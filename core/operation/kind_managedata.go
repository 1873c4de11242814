package operation

import (
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store"
)

const (
	// MaxDataNameLength is the maximum length of the name of a data entry.
	MaxDataNameLength = 64

	// MaxDataValueLength is the maximum length of the value of a data entry.
	MaxDataValueLength = 64
)

const (
	// ManageDataInvalidName means the name is empty, too long or not
	// printable.
	ManageDataInvalidName InnerCode = -1 - iota
	// ManageDataNameNotFound means the entry to remove does not exist.
	ManageDataNameNotFound
	// ManageDataLowReserve means the acting account cannot afford the reserve
	// of a new entry.
	ManageDataLowReserve
	// ManageDataInvalidValue means the value is too long.
	ManageDataInvalidValue
)

var manageDataCodes = map[InnerCode]string{
	InnerSuccess:           "success",
	ManageDataInvalidName:  "invalid name",
	ManageDataNameNotFound: "name not found",
	ManageDataLowReserve:   "low reserve",
	ManageDataInvalidValue: "invalid value",
}

// ManageData is the body of an operation that sets a named value of the
// acting account. A nil value removes the entry.
type ManageData struct {
	Name  string `cbor:"1,keyasint"`
	Value []byte `cbor:"2,keyasint"`
}

// Kind implements operation.Body.
func (ManageData) Kind() Kind {
	return KindManageData
}

type manageData struct {
	base
	body ManageData
}

func newManageData(f *Frame) (Executor, error) {
	body, ok := f.op.Body.(ManageData)
	if !ok {
		return nil, &BodyTypeError{Kind: KindManageData, Body: f.op.Body}
	}

	return &manageData{base: base{Frame: f}, body: body}, nil
}

func (e *manageData) CheckValid(ctx Context) bool {
	name := e.body.Name
	if name == "" || len(name) > MaxDataNameLength || !isPrintable(name) {
		return e.Fail(ManageDataInvalidName)
	}

	if len(e.body.Value) > MaxDataValueLength {
		return e.Fail(ManageDataInvalidValue)
	}

	return true
}

func (e *manageData) Apply(delta store.Snapshot, ctx Context) bool {
	source := e.GetSource()

	entry := mustLoadData(delta, source.ID, e.body.Name)

	if e.body.Value == nil {
		if entry == nil {
			return e.Fail(ManageDataNameNotFound)
		}

		mustDeleteData(delta, source.ID, e.body.Name)

		source.NumSubEntries--
		mustStoreAccount(delta, source)

		return true
	}

	if entry == nil {
		if !source.CanAddSubEntry(ctx.Params) {
			return e.Fail(ManageDataLowReserve)
		}

		entry = &ledger.DataEntry{AccountID: source.ID, Name: e.body.Name}

		source.NumSubEntries++
		mustStoreAccount(delta, source)
	}

	entry.Value = e.body.Value
	mustStoreData(delta, entry)

	return true
}
