package ledger

import (
	"sort"

	"go.dedis.ch/opcore/core/access"
)

const (
	// FlagAuthRequired requires the issuer to authorize the trust lines of
	// its assets.
	FlagAuthRequired uint32 = 1 << iota

	// FlagAuthRevocable allows the issuer to revoke an authorization.
	FlagAuthRevocable

	// MaskAccountFlags is the mask of the known account flags.
	MaskAccountFlags = FlagAuthRequired | FlagAuthRevocable
)

// Thresholds holds the weight of the master key and the three ascending
// signing-weight thresholds of an account.
type Thresholds struct {
	Master uint8 `cbor:"1,keyasint"`
	Low    uint8 `cbor:"2,keyasint"`
	Medium uint8 `cbor:"3,keyasint"`
	High   uint8 `cbor:"4,keyasint"`
}

// Signer is an extra key allowed to sign for an account, with its weight.
type Signer struct {
	Key    AccountID `cbor:"1,keyasint"`
	Weight uint8     `cbor:"2,keyasint"`
}

// Account is the ledger entry of an account.
type Account struct {
	ID            AccountID  `cbor:"1,keyasint"`
	Balance       int64      `cbor:"2,keyasint"`
	NumSubEntries uint32     `cbor:"3,keyasint"`
	Flags         uint32     `cbor:"4,keyasint"`
	HomeDomain    string     `cbor:"5,keyasint,omitempty"`
	Thresholds    Thresholds `cbor:"6,keyasint"`
	Signers       []Signer   `cbor:"7,keyasint,omitempty"`

	authOnly bool
}

// NewAccount returns a new account with the given balance. The master key has
// a weight of 1 and the thresholds are zero.
func NewAccount(id AccountID, balance int64) *Account {
	return &Account{
		ID:         id,
		Balance:    balance,
		Thresholds: Thresholds{Master: 1},
	}
}

// NewAuthOnlyAccount returns a placeholder of an account that does not exist
// yet. It can only be used to verify the signatures of the master key and it
// is never persisted.
func NewAuthOnlyAccount(id AccountID) *Account {
	acc := NewAccount(id, 0)
	acc.authOnly = true

	return acc
}

// IsAuthOnly returns true if the account is a placeholder.
func (a *Account) IsAuthOnly() bool {
	return a.authOnly
}

// GetThreshold returns the weight required for the level.
func (a *Account) GetThreshold(level access.Level) uint8 {
	switch level {
	case access.LevelLow:
		return a.Thresholds.Low
	case access.LevelHigh:
		return a.Thresholds.High
	default:
		return a.Thresholds.Medium
	}
}

// GetSigners returns the keys allowed to sign for the account. The master key
// comes first followed by the extra signers in ascending key order.
func (a *Account) GetSigners() []Signer {
	signers := make([]Signer, 0, len(a.Signers)+1)
	signers = append(signers, Signer{Key: a.ID, Weight: a.Thresholds.Master})
	signers = append(signers, a.Signers...)

	return signers
}

// HasSigner returns true if the key is an extra signer of the account.
func (a *Account) HasSigner(key AccountID) bool {
	for _, s := range a.Signers {
		if s.Key == key {
			return true
		}
	}

	return false
}

// SetSigner adds or updates the signer. It returns false when the signer did
// not exist before.
func (a *Account) SetSigner(signer Signer) bool {
	for i, s := range a.Signers {
		if s.Key == signer.Key {
			a.Signers[i].Weight = signer.Weight
			return true
		}
	}

	a.Signers = append(a.Signers, signer)

	sort.Slice(a.Signers, func(i, j int) bool {
		return a.Signers[i].Key.Compare(a.Signers[j].Key) < 0
	})

	return false
}

// RemoveSigner removes the signer with the key and returns true if it existed.
func (a *Account) RemoveSigner(key AccountID) bool {
	for i, s := range a.Signers {
		if s.Key == key {
			a.Signers = append(a.Signers[:i], a.Signers[i+1:]...)
			return true
		}
	}

	return false
}

// IsAuthRequired returns true if the trust lines of the assets issued by the
// account must be authorized.
func (a *Account) IsAuthRequired() bool {
	return a.Flags&FlagAuthRequired != 0
}

// IsAuthRevocable returns true if the account can revoke an authorization.
func (a *Account) IsAuthRevocable() bool {
	return a.Flags&FlagAuthRevocable != 0
}

// MinBalance returns the minimum balance of the account with the given number
// of sub-entries.
func MinBalance(params Params, subEntries uint32) int64 {
	return (2 + int64(subEntries)) * params.BaseReserve
}

// GetMinBalance returns the minimum balance the account must keep.
func (a *Account) GetMinBalance(params Params) int64 {
	return MinBalance(params, a.NumSubEntries)
}

// CanAddSubEntry returns true if the balance covers the reserve of one more
// sub-entry.
func (a *Account) CanAddSubEntry(params Params) bool {
	return a.Balance >= MinBalance(params, a.NumSubEntries+1)
}

// TrustLine is the entry holding the balance of a credit asset for an account.
type TrustLine struct {
	AccountID  AccountID `cbor:"1,keyasint"`
	Asset      Asset     `cbor:"2,keyasint"`
	Balance    int64     `cbor:"3,keyasint"`
	Limit      int64     `cbor:"4,keyasint"`
	Authorized bool      `cbor:"5,keyasint"`
}

// GetAvailableLimit returns the amount the line can still receive.
func (tl *TrustLine) GetAvailableLimit() int64 {
	return tl.Limit - tl.Balance
}

// DataEntry is a named value attached to an account.
type DataEntry struct {
	AccountID AccountID `cbor:"1,keyasint"`
	Name      string    `cbor:"2,keyasint"`
	Value     []byte    `cbor:"3,keyasint"`
}
