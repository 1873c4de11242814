package ed25519

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/kyber/v3/sign/schnorr"
	"go.dedis.ch/opcore/crypto"
)

func TestPublicKey_New(t *testing.T) {
	point := suite.Point().Pick(suite.RandomStream())
	pointBuf, err := point.MarshalBinary()
	require.NoError(t, err)

	pubKey, err := NewPublicKey(pointBuf)
	require.NoError(t, err)
	require.True(t, pubKey.point.Equal(point))

	_, err = NewPublicKey([]byte{})
	require.EqualError(t, err, "couldn't unmarshal point: invalid Ed25519 curve point")
}

func TestPublicKey_Verify(t *testing.T) {
	signer := NewSigner()

	sig, err := signer.Sign([]byte("deadbeef"))
	require.NoError(t, err)

	pk := signer.GetPublicKey()

	err = pk.Verify([]byte("deadbeef"), sig)
	require.NoError(t, err)

	err = pk.Verify([]byte("deadbeef"), fakeSignature{})
	require.EqualError(t, err, "invalid signature type 'ed25519.fakeSignature'")

	err = pk.Verify([]byte("abc"), sig)
	require.Regexp(t, "^schnorr verify failed: ", err)
}

func TestPublicKey_Equal(t *testing.T) {
	signer := NewSigner()
	pk := signer.GetPublicKey()

	require.True(t, pk.Equal(signer.GetPublicKey()))
	require.False(t, pk.Equal(NewSigner().GetPublicKey()))
	require.False(t, pk.Equal(fakeSignature{}))
}

func TestPublicKey_MarshalText(t *testing.T) {
	pk := NewSigner().GetPublicKey()

	buffer, err := pk.MarshalText()
	require.NoError(t, err)
	require.Contains(t, string(buffer), "schnorr:")
	require.Len(t, pk.(PublicKey).String(), 24)
}

func TestSignature_Equal(t *testing.T) {
	sig := NewSignature([]byte{1, 2, 3})

	require.True(t, sig.Equal(NewSignature([]byte{1, 2, 3})))
	require.False(t, sig.Equal(NewSignature([]byte{1, 2})))
	require.False(t, sig.Equal(fakeSignature{}))

	data, err := sig.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)
}

func TestSigner_FromSecret(t *testing.T) {
	signer := NewSigner()

	secret, err := signer.MarshalBinary()
	require.NoError(t, err)

	restored, err := NewSignerFromSecret(secret)
	require.NoError(t, err)
	require.True(t, restored.GetPublicKey().Equal(signer.GetPublicKey()))

	_, err = NewSignerFromSecret([]byte{1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "couldn't unmarshal scalar")
}

func TestSigner_Sign(t *testing.T) {
	signer := NewSigner()

	sig, err := signer.Sign([]byte("deadbeef"))
	require.NoError(t, err)

	err = schnorr.Verify(suite, signer.keyPair.Public, []byte("deadbeef"), sig.(Signature).data)
	require.NoError(t, err)
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeSignature struct {
	crypto.Signature
}
