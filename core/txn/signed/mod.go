// Package signed is an implementation of the transaction abstraction.
//
// A transaction is signed by any number of keys. Each signature covers the
// digest of the transaction and the weights of the keys that signed are
// counted against the thresholds of the accounts the operations act on. The
// nonce makes two transactions with the same operations different.
package signed

import (
	"encoding/binary"
	"io"

	"go.dedis.ch/opcore/core/access"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/operation"
	"go.dedis.ch/opcore/crypto"
	"go.dedis.ch/opcore/crypto/ed25519"
	"golang.org/x/xerrors"
)

// Signature is the signature of the transaction by a key.
type Signature struct {
	Key ledger.AccountID
	Sig crypto.Signature
}

// Transaction is a list of operations with the signatures of the keys that
// authorize them.
//
// - implements txn.Transaction
type Transaction struct {
	source   ledger.AccountID
	nonce    uint64
	feePerOp int64
	ops      []operation.Operation
	sigs     []Signature
	hash     []byte

	verified map[ledger.AccountID]bool
}

type template struct {
	Transaction

	hashFactory crypto.HashFactory
}

// TransactionOption is the type of options to create a transaction.
type TransactionOption func(*template)

// WithOperations is an option to append operations to the transaction.
func WithOperations(ops ...operation.Operation) TransactionOption {
	return func(tmpl *template) {
		tmpl.ops = append(tmpl.ops, ops...)
	}
}

// WithFee is an option to set the flat fee charged per operation.
func WithFee(feePerOp int64) TransactionOption {
	return func(tmpl *template) {
		tmpl.feePerOp = feePerOp
	}
}

// WithSignature is an option to set a signature. The signature will be
// verified against the key.
func WithSignature(key ledger.AccountID, sig crypto.Signature) TransactionOption {
	return func(tmpl *template) {
		tmpl.sigs = append(tmpl.sigs, Signature{Key: key, Sig: sig})
	}
}

// WithHashFactory is an option to set a different hash factory when creating a
// transaction.
func WithHashFactory(f crypto.HashFactory) TransactionOption {
	return func(tmpl *template) {
		tmpl.hashFactory = f
	}
}

// NewTransaction creates a new transaction of the source account with the
// provided nonce.
func NewTransaction(source ledger.AccountID, nonce uint64, opts ...TransactionOption) (*Transaction, error) {
	tmpl := template{
		Transaction: Transaction{
			source:   source,
			nonce:    nonce,
			verified: make(map[ledger.AccountID]bool),
		},
		hashFactory: crypto.NewHashFactory(crypto.Sha256),
	}

	for _, opt := range opts {
		opt(&tmpl)
	}

	h := tmpl.hashFactory.New()
	err := tmpl.Fingerprint(h)
	if err != nil {
		return nil, xerrors.Errorf("couldn't fingerprint tx: %v", err)
	}

	tmpl.hash = h.Sum(nil)

	for _, sig := range tmpl.sigs {
		err := verify(sig, tmpl.hash)
		if err != nil {
			return nil, xerrors.Errorf("invalid signature: %v", err)
		}

		tmpl.verified[sig.Key] = true
	}

	return &tmpl.Transaction, nil
}

// GetID implements txn.Transaction. It returns the digest of the transaction.
func (t *Transaction) GetID() []byte {
	return t.hash
}

// GetSourceAccountID implements txn.Transaction. It returns the account the
// transaction is charged to.
func (t *Transaction) GetSourceAccountID() ledger.AccountID {
	return t.source
}

// GetNonce returns the nonce of the transaction.
func (t *Transaction) GetNonce() uint64 {
	return t.nonce
}

// GetOperations returns the operations of the transaction.
func (t *Transaction) GetOperations() []operation.Operation {
	return append([]operation.Operation{}, t.ops...)
}

// GetFee returns the fee binding of each operation of the transaction.
func (t *Transaction) GetFee() operation.Fee {
	if t.feePerOp <= 0 {
		return operation.NoFee()
	}

	return operation.FlatFee(t.feePerOp)
}

// GetTotalFee returns the amount charged for the whole transaction. It returns
// false when the total overflows.
func (t *Transaction) GetTotalFee() (int64, bool) {
	return t.GetFee().Total(len(t.ops))
}

// GetSignatures returns the signatures of the transaction.
func (t *Transaction) GetSignatures() []Signature {
	return append([]Signature{}, t.sigs...)
}

// Sign signs the transaction with the signer and stores the signature. A
// previous signature of the same key is replaced.
func (t *Transaction) Sign(signer crypto.Signer) error {
	if len(t.hash) == 0 {
		return xerrors.New("missing digest in transaction")
	}

	key, err := AccountOf(signer.GetPublicKey())
	if err != nil {
		return xerrors.Errorf("couldn't get key: %v", err)
	}

	sig, err := signer.Sign(t.hash)
	if err != nil {
		return xerrors.Errorf("signer: %v", err)
	}

	for i, s := range t.sigs {
		if s.Key == key {
			t.sigs = append(t.sigs[:i], t.sigs[i+1:]...)
			break
		}
	}

	t.sigs = append(t.sigs, Signature{Key: key, Sig: sig})
	t.verified[key] = true

	return nil
}

// CheckSignature implements txn.Transaction. It walks the signers of the
// account and sums the weights of the ones that signed the transaction and are
// not in the set yet. It stops as soon as the weight is reached, and only then
// the signers counted are added to the set. A zero weight is reached by any
// signer of the account that signed, even one already in the set, and nothing
// is added to the set.
func (t *Transaction) CheckSignature(account *ledger.Account, weight uint8, used *access.SignerSet) bool {
	if weight == 0 {
		for _, signer := range account.GetSigners() {
			if signer.Weight > 0 && t.hasSigned(signer.Key) {
				return true
			}
		}

		return false
	}

	total := 0
	counted := []access.Identity{}

	for _, signer := range account.GetSigners() {
		if signer.Weight == 0 || used.Contains(signer.Key) || !t.hasSigned(signer.Key) {
			continue
		}

		total += int(signer.Weight)
		counted = append(counted, signer.Key)

		if total >= int(weight) {
			used.Add(counted...)
			return true
		}
	}

	return false
}

// Fingerprint writes a deterministic binary representation of the
// transaction. The signatures are not part of it.
func (t *Transaction) Fingerprint(w io.Writer) error {
	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, t.nonce)

	_, err := w.Write(buffer)
	if err != nil {
		return xerrors.Errorf("couldn't write nonce: %v", err)
	}

	_, err = w.Write(t.source[:])
	if err != nil {
		return xerrors.Errorf("couldn't write source: %v", err)
	}

	binary.LittleEndian.PutUint64(buffer, uint64(t.feePerOp))

	_, err = w.Write(buffer)
	if err != nil {
		return xerrors.Errorf("couldn't write fee: %v", err)
	}

	for i, op := range t.ops {
		err = op.Fingerprint(w)
		if err != nil {
			return xerrors.Errorf("couldn't write operation %d: %v", i, err)
		}
	}

	return nil
}

// AccountOf returns the identifier of the account of which the public key is
// the master key.
func AccountOf(pubkey crypto.PublicKey) (ledger.AccountID, error) {
	data, err := pubkey.MarshalBinary()
	if err != nil {
		return ledger.AccountID{}, xerrors.Errorf("couldn't marshal public key: %v", err)
	}

	id, err := ledger.NewAccountID(data)
	if err != nil {
		return id, xerrors.Errorf("invalid public key: %v", err)
	}

	return id, nil
}

// hasSigned returns true if the key has a valid signature on the transaction.
func (t *Transaction) hasSigned(key ledger.AccountID) bool {
	valid, found := t.verified[key]
	if found {
		return valid
	}

	valid = false
	for _, sig := range t.sigs {
		if sig.Key == key {
			valid = verify(sig, t.hash) == nil
			break
		}
	}

	t.verified[key] = valid

	return valid
}

func verify(sig Signature, digest []byte) error {
	pubkey, err := ed25519.NewPublicKey(sig.Key[:])
	if err != nil {
		return xerrors.Errorf("invalid key: %v", err)
	}

	return pubkey.Verify(digest, sig.Sig)
}
