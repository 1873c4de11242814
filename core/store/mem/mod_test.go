package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/opcore/testing/fake"
)

func TestDelta_Get(t *testing.T) {
	parent := NewDelta(nil)
	parent.store["B"] = item{value: []byte{2}}
	parent.store["D"] = item{value: []byte{3}}

	delta := NewDelta(parent)
	delta.store["A"] = item{value: []byte{1}}

	value, err := delta.Get([]byte("A"))
	require.NoError(t, err)
	require.Equal(t, []byte{1}, value)

	value, err = delta.Get([]byte("B"))
	require.NoError(t, err)
	require.Equal(t, []byte{2}, value)

	value, err = delta.Get([]byte("C"))
	require.NoError(t, err)
	require.Nil(t, value)

	delta.store["D"] = item{deleted: true}
	value, err = delta.Get([]byte("D"))
	require.NoError(t, err)
	require.Nil(t, value)

	delta = NewDelta(fake.NewBadSnapshot())
	_, err = delta.Get([]byte("A"))
	require.EqualError(t, err, fake.Err("parent"))
}

func TestDelta_Set(t *testing.T) {
	delta := NewDelta(nil)

	require.NoError(t, delta.Set([]byte("A"), []byte{1}))
	require.Equal(t, item{value: []byte{1}}, delta.store["A"])
	require.Equal(t, 1, delta.Len())
}

func TestDelta_Delete(t *testing.T) {
	delta := NewDelta(nil)
	delta.store["A"] = item{value: []byte{1}}

	require.NoError(t, delta.Delete([]byte("A")))
	require.Equal(t, item{deleted: true}, delta.store["A"])

	require.NoError(t, delta.Delete([]byte("B")))
	require.Equal(t, item{deleted: true}, delta.store["B"])
}

func TestDelta_Apply(t *testing.T) {
	snap := fake.NewSnapshot()
	require.NoError(t, snap.Set([]byte("B"), []byte{2}))

	delta := NewDelta(snap)
	require.NoError(t, delta.Set([]byte("C"), []byte{3}))
	require.NoError(t, delta.Set([]byte("A"), []byte{1}))
	require.NoError(t, delta.Delete([]byte("B")))

	err := delta.Apply(snap)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, snap.Calls())

	value, err := snap.Get([]byte("B"))
	require.NoError(t, err)
	require.Nil(t, value)

	value, err = snap.Get([]byte("A"))
	require.NoError(t, err)
	require.Equal(t, []byte{1}, value)

	err = delta.Apply(fake.NewBadSnapshot())
	require.EqualError(t, err, fake.Err("failed to apply key 0x41"))
}

func TestDelta_Layered(t *testing.T) {
	parent := NewDelta(nil)
	require.NoError(t, parent.Set([]byte("A"), []byte{1}))

	child := NewDelta(parent)
	require.NoError(t, child.Set([]byte("A"), []byte{2}))

	value, err := parent.Get([]byte("A"))
	require.NoError(t, err)
	require.Equal(t, []byte{1}, value)

	require.NoError(t, child.Apply(parent))

	value, err = parent.Get([]byte("A"))
	require.NoError(t, err)
	require.Equal(t, []byte{2}, value)
}
