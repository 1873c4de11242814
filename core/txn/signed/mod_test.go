package signed

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/opcore/core/access"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/operation"
	"go.dedis.ch/opcore/crypto/ed25519"
	"go.dedis.ch/opcore/testing/fake"
)

func TestTransaction_New(t *testing.T) {
	signer := ed25519.NewSigner()
	source := accountOf(t, signer)

	tx, err := NewTransaction(source, 0, WithOperations(payment()))
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.Len(t, tx.GetID(), 32)

	require.NoError(t, tx.Sign(signer))

	sig := tx.GetSignatures()[0]

	tx, err = NewTransaction(source, 0, WithOperations(payment()), WithSignature(sig.Key, sig.Sig))
	require.NoError(t, err)
	require.Len(t, tx.GetSignatures(), 1)

	_, err = NewTransaction(source, 1, WithOperations(payment()), WithSignature(sig.Key, sig.Sig))
	require.Error(t, err)
	require.Regexp(t, "^invalid signature: schnorr verify failed: ", err.Error())

	_, err = NewTransaction(source, 0, WithHashFactory(fake.NewHashFactory(fake.NewBadHash())))
	require.EqualError(t, err, fake.Err("couldn't fingerprint tx: couldn't write nonce"))
}

func TestTransaction_Getters(t *testing.T) {
	tx, err := NewTransaction(ledger.AccountID{1}, 123, WithOperations(payment(), payment()))
	require.NoError(t, err)

	require.Equal(t, ledger.AccountID{1}, tx.GetSourceAccountID())
	require.Equal(t, uint64(123), tx.GetNonce())
	require.Len(t, tx.GetOperations(), 2)
	require.Equal(t, operation.NoFee(), tx.GetFee())
	total, ok := tx.GetTotalFee()
	require.True(t, ok)
	require.Equal(t, int64(0), total)

	tx, err = NewTransaction(ledger.AccountID{1}, 123, WithOperations(payment(), payment()), WithFee(100))
	require.NoError(t, err)
	require.Equal(t, operation.FlatFee(100), tx.GetFee())
	total, ok = tx.GetTotalFee()
	require.True(t, ok)
	require.Equal(t, int64(200), total)

	tx, err = NewTransaction(ledger.AccountID{1}, 123, WithOperations(payment(), payment()),
		WithFee(math.MaxInt64-49))
	require.NoError(t, err)

	_, ok = tx.GetTotalFee()
	require.False(t, ok)
}

func TestTransaction_Sign(t *testing.T) {
	signer := ed25519.NewSigner()

	tx, err := NewTransaction(ledger.AccountID{1}, 0)
	require.NoError(t, err)

	require.NoError(t, tx.Sign(signer))
	require.NoError(t, tx.Sign(signer))
	require.Len(t, tx.GetSignatures(), 1)

	tx.hash = nil
	err = tx.Sign(signer)
	require.EqualError(t, err, "missing digest in transaction")
}

func TestTransaction_Fingerprint(t *testing.T) {
	tx, err := NewTransaction(ledger.AccountID{1}, 2, WithOperations(payment()), WithFee(3))
	require.NoError(t, err)

	buffer := new(bytes.Buffer)
	require.NoError(t, tx.Fingerprint(buffer))
	require.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0, 1}, buffer.Bytes()[:9])

	err = tx.Fingerprint(fake.NewBadHashWithDelay(1))
	require.EqualError(t, err, fake.Err("couldn't write source"))

	err = tx.Fingerprint(fake.NewBadHashWithDelay(2))
	require.EqualError(t, err, fake.Err("couldn't write fee"))

	err = tx.Fingerprint(fake.NewBadHashWithDelay(3))
	require.EqualError(t, err, fake.Err("couldn't write operation 0: couldn't write header"))

	// The signatures are not part of the digest.
	other, err := NewTransaction(ledger.AccountID{1}, 2, WithOperations(payment()), WithFee(3))
	require.NoError(t, err)
	require.NoError(t, other.Sign(ed25519.NewSigner()))
	require.Equal(t, tx.GetID(), other.GetID())
}

func TestTransaction_CheckSignature(t *testing.T) {
	master := ed25519.NewSigner()
	extra := ed25519.NewSigner()
	stranger := ed25519.NewSigner()

	acc := ledger.NewAccount(accountOf(t, master), 0)
	acc.SetSigner(ledger.Signer{Key: accountOf(t, extra), Weight: 2})
	acc.SetSigner(ledger.Signer{Key: accountOf(t, stranger), Weight: 0})

	tx, err := NewTransaction(acc.ID, 0, WithOperations(payment()))
	require.NoError(t, err)

	// No signature at all never authorizes, even a zero weight.
	require.False(t, tx.CheckSignature(acc, 0, access.NewSignerSet()))

	require.NoError(t, tx.Sign(stranger))
	require.False(t, tx.CheckSignature(acc, 0, access.NewSignerSet()))

	require.NoError(t, tx.Sign(master))

	used := access.NewSignerSet()
	require.True(t, tx.CheckSignature(acc, 1, used))
	require.Equal(t, 1, used.Len())
	require.True(t, used.Contains(acc.ID))

	require.NoError(t, tx.Sign(extra))

	used = access.NewSignerSet()
	require.True(t, tx.CheckSignature(acc, 3, used))
	require.Equal(t, 2, used.Len())

	require.False(t, tx.CheckSignature(acc, 4, access.NewSignerSet()))
}

func TestTransaction_CheckSignatureConsumesSigners(t *testing.T) {
	master := ed25519.NewSigner()
	extra := ed25519.NewSigner()

	acc := ledger.NewAccount(accountOf(t, master), 0)
	acc.SetSigner(ledger.Signer{Key: accountOf(t, extra), Weight: 1})

	tx, err := NewTransaction(acc.ID, 0, WithOperations(payment(), payment()))
	require.NoError(t, err)
	require.NoError(t, tx.Sign(master))
	require.NoError(t, tx.Sign(extra))

	used := access.NewSignerSet()

	// The first operation only takes what it needs.
	require.True(t, tx.CheckSignature(acc, 1, used))
	require.Equal(t, 1, used.Len())

	require.False(t, tx.CheckSignature(acc, 2, used))
	require.Equal(t, 1, used.Len())

	require.True(t, tx.CheckSignature(acc, 1, used))
	require.Equal(t, 2, used.Len())

	require.False(t, tx.CheckSignature(acc, 1, used))
}

func TestTransaction_CheckSignatureForged(t *testing.T) {
	master := ed25519.NewSigner()
	other := ed25519.NewSigner()

	acc := ledger.NewAccount(accountOf(t, master), 0)

	tx, err := NewTransaction(acc.ID, 0)
	require.NoError(t, err)

	sig, err := other.Sign(tx.GetID())
	require.NoError(t, err)

	tx.sigs = append(tx.sigs, Signature{Key: acc.ID, Sig: sig})
	require.False(t, tx.CheckSignature(acc, 0, access.NewSignerSet()))

	// The result of the verification is kept.
	tx.sigs = nil
	require.False(t, tx.CheckSignature(acc, 0, access.NewSignerSet()))
}

func TestAccountOf(t *testing.T) {
	signer := ed25519.NewSigner()

	id, err := AccountOf(signer.GetPublicKey())
	require.NoError(t, err)

	data, err := signer.GetPublicKey().MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, data, id[:])
}

// -----------------------------------------------------------------------------
// Utility functions

func payment() operation.Operation {
	return operation.NewOperation(operation.Payment{
		Destination: ledger.AccountID{2},
		Amount:      10,
	})
}

func accountOf(t *testing.T, signer ed25519.Signer) ledger.AccountID {
	id, err := AccountOf(signer.GetPublicKey())
	require.NoError(t, err)

	return id
}
