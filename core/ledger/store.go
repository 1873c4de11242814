package ledger

import (
	"github.com/fxamacker/cbor/v2"
	"go.dedis.ch/opcore/core/store"
	"go.dedis.ch/opcore/core/store/prefixed"
	"golang.org/x/xerrors"
)

const (
	accountPrefix   = "ledger:account"
	trustLinePrefix = "ledger:trustline"
	dataPrefix      = "ledger:data"
)

var encMode cbor.EncMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// Marshal returns the deterministic encoding of the value.
func Marshal(v interface{}) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode: %v", err)
	}

	return data, nil
}

// LoadAccount returns the account, or nil if it does not exist.
func LoadAccount(r store.Readable, id AccountID) (*Account, error) {
	acc := &Account{}

	found, err := load(prefixed.NewReadable(accountPrefix, r), id[:], acc)
	if err != nil || !found {
		return nil, err
	}

	return acc, nil
}

// StoreAccount writes the account.
func StoreAccount(s store.Snapshot, acc *Account) error {
	if acc.IsAuthOnly() {
		return xerrors.Errorf("account %v is a placeholder", acc.ID)
	}

	return save(prefixed.NewSnapshot(accountPrefix, s), acc.ID[:], acc)
}

// DeleteAccount removes the account.
func DeleteAccount(s store.Snapshot, id AccountID) error {
	err := prefixed.NewSnapshot(accountPrefix, s).Delete(id[:])
	if err != nil {
		return xerrors.Errorf("failed to delete: %v", err)
	}

	return nil
}

// LoadTrustLine returns the trust line of the account for the asset, or nil
// if it does not exist.
func LoadTrustLine(r store.Readable, id AccountID, asset Asset) (*TrustLine, error) {
	tl := &TrustLine{}

	found, err := load(prefixed.NewReadable(trustLinePrefix, r), trustLineKey(id, asset), tl)
	if err != nil || !found {
		return nil, err
	}

	return tl, nil
}

// StoreTrustLine writes the trust line.
func StoreTrustLine(s store.Snapshot, tl *TrustLine) error {
	return save(prefixed.NewSnapshot(trustLinePrefix, s), trustLineKey(tl.AccountID, tl.Asset), tl)
}

// DeleteTrustLine removes the trust line of the account for the asset.
func DeleteTrustLine(s store.Snapshot, id AccountID, asset Asset) error {
	err := prefixed.NewSnapshot(trustLinePrefix, s).Delete(trustLineKey(id, asset))
	if err != nil {
		return xerrors.Errorf("failed to delete: %v", err)
	}

	return nil
}

// LoadData returns the data entry of the account, or nil if it does not exist.
func LoadData(r store.Readable, id AccountID, name string) (*DataEntry, error) {
	entry := &DataEntry{}

	found, err := load(prefixed.NewReadable(dataPrefix, r), dataKey(id, name), entry)
	if err != nil || !found {
		return nil, err
	}

	return entry, nil
}

// StoreData writes the data entry.
func StoreData(s store.Snapshot, entry *DataEntry) error {
	return save(prefixed.NewSnapshot(dataPrefix, s), dataKey(entry.AccountID, entry.Name), entry)
}

// DeleteData removes the data entry of the account.
func DeleteData(s store.Snapshot, id AccountID, name string) error {
	err := prefixed.NewSnapshot(dataPrefix, s).Delete(dataKey(id, name))
	if err != nil {
		return xerrors.Errorf("failed to delete: %v", err)
	}

	return nil
}

func load(r store.Readable, key []byte, v interface{}) (bool, error) {
	data, err := r.Get(key)
	if err != nil {
		return false, xerrors.Errorf("failed to read: %v", err)
	}

	if data == nil {
		return false, nil
	}

	err = cbor.Unmarshal(data, v)
	if err != nil {
		return false, xerrors.Errorf("failed to decode: %v", err)
	}

	return true, nil
}

func save(w store.Writable, key []byte, v interface{}) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}

	err = w.Set(key, data)
	if err != nil {
		return xerrors.Errorf("failed to write: %v", err)
	}

	return nil
}

func trustLineKey(id AccountID, asset Asset) []byte {
	key := make([]byte, 0, 2*len(id)+len(asset.Code)+1)
	key = append(key, id[:]...)
	key = append(key, byte(len(asset.Code)))
	key = append(key, asset.Code...)
	key = append(key, asset.Issuer[:]...)

	return key
}

func dataKey(id AccountID, name string) []byte {
	return append(append([]byte{}, id[:]...), name...)
}
