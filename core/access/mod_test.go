package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	require.Equal(t, "low", LevelLow.String())
	require.Equal(t, "medium", LevelMedium.String())
	require.Equal(t, "high", LevelHigh.String())
	require.Equal(t, "Level(5)", Level(5).String())
}

func TestSignerSet_Add(t *testing.T) {
	set := NewSignerSet(fakeIdentity("A"), fakeIdentity("A"), fakeIdentity("B"))
	require.Equal(t, 2, set.Len())

	set.Add(fakeIdentity("B"), fakeIdentity("C"))
	require.Equal(t, 3, set.Len())
	require.Equal(t, []Identity{fakeIdentity("A"), fakeIdentity("B"),
		fakeIdentity("C")}, set.GetSigners())
}

func TestSignerSet_Contains(t *testing.T) {
	set := NewSignerSet(fakeIdentity("A"))

	require.True(t, set.Contains(fakeIdentity("A")))
	require.False(t, set.Contains(fakeIdentity("B")))
	require.False(t, NewSignerSet().Contains(fakeIdentity("A")))
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeIdentity string

func (i fakeIdentity) MarshalText() ([]byte, error) {
	return []byte(i), nil
}

func (i fakeIdentity) Equal(other interface{}) bool {
	o, ok := other.(fakeIdentity)
	return ok && o == i
}
