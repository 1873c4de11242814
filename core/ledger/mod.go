// Package ledger defines the entries the operations read and write: accounts,
// trust lines and data entries. The entries are encoded with a deterministic
// CBOR encoding so that every node stores byte-identical values.
package ledger

import (
	"bytes"
	"encoding/hex"
	"math"

	"golang.org/x/xerrors"
)

const (
	// DefaultBaseReserve is the amount an account must hold for itself and
	// for each of its sub-entries.
	DefaultBaseReserve int64 = 10_000_000

	// DefaultMaxSigners is the maximum number of extra signers of an account.
	DefaultMaxSigners = 20

	// MaxAssetCodeLength is the maximum number of characters of an asset code.
	MaxAssetCodeLength = 12
)

// Params are the ledger-wide parameters the operations depend on.
type Params struct {
	// BaseReserve is the reserve required per entry owned by an account.
	BaseReserve int64

	// MaxAmount is the maximum representable amount.
	MaxAmount int64

	// MaxSigners is the maximum number of extra signers per account.
	MaxSigners int
}

// DefaultParams returns the default ledger parameters.
func DefaultParams() Params {
	return Params{
		BaseReserve: DefaultBaseReserve,
		MaxAmount:   math.MaxInt64,
		MaxSigners:  DefaultMaxSigners,
	}
}

// AccountID is the identifier of an account. It is the marshaled public key
// of the master signer of the account.
//
// - implements access.Identity
type AccountID [32]byte

// NewAccountID returns the identifier from its binary form.
func NewAccountID(data []byte) (AccountID, error) {
	var id AccountID

	if len(data) != len(id) {
		return id, xerrors.Errorf("invalid account id length %d", len(data))
	}

	copy(id[:], data)

	return id, nil
}

// ParseAccountID returns the identifier from its hexadecimal form.
func ParseAccountID(text string) (AccountID, error) {
	data, err := hex.DecodeString(text)
	if err != nil {
		return AccountID{}, xerrors.Errorf("malformed hex: %v", err)
	}

	return NewAccountID(data)
}

// Equal implements access.Identity. It returns true when the other value is
// the same account identifier.
func (id AccountID) Equal(other interface{}) bool {
	switch o := other.(type) {
	case AccountID:
		return o == id
	case *AccountID:
		return o != nil && *o == id
	default:
		return false
	}
}

// Compare returns an integer comparing the two identifiers byte-wise.
func (id AccountID) Compare(other AccountID) int {
	return bytes.Compare(id[:], other[:])
}

// MarshalText implements encoding.TextMarshaler. It returns the hexadecimal
// form of the identifier.
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(id[:])), nil
}

// String implements fmt.Stringer. It returns a short representation of the
// identifier.
func (id AccountID) String() string {
	return hex.EncodeToString(id[:4])
}

// Asset is either the native asset, or a credit issued by an account.
type Asset struct {
	Code   string    `cbor:"1,keyasint,omitempty"`
	Issuer AccountID `cbor:"2,keyasint"`
}

// NativeAsset returns the native asset.
func NativeAsset() Asset {
	return Asset{}
}

// NewCredit returns the asset of the given code issued by the account.
func NewCredit(code string, issuer AccountID) Asset {
	return Asset{
		Code:   code,
		Issuer: issuer,
	}
}

// IsNative returns true for the native asset.
func (a Asset) IsNative() bool {
	return a.Code == ""
}

// IsValid returns true if the asset is the native one, or if the code is
// made of 1 to 12 alphanumeric ASCII characters.
func (a Asset) IsValid() bool {
	if a.IsNative() {
		return a.Issuer == AccountID{}
	}

	if len(a.Code) > MaxAssetCodeLength {
		return false
	}

	for _, c := range a.Code {
		isAlnum := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isAlnum {
			return false
		}
	}

	return true
}

// String implements fmt.Stringer.
func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}

	return a.Code + ":" + a.Issuer.String()
}
