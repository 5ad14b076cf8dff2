package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_AddIsIdempotent(t *testing.T) {
	s := NewSet()
	require.True(t, s.Add("pet-1"))
	require.False(t, s.Add("pet-1"))
	require.False(t, s.Add("  "))
	require.Equal(t, []string{"pet-1"}, s.IDs())
}

func TestSet_RemoveAndContains(t *testing.T) {
	s := NewSet("pet-1", "pet-2", "pet-3")
	require.True(t, s.Contains("pet-2"))
	require.True(t, s.Remove("pet-2"))
	require.False(t, s.Remove("pet-2"))
	require.False(t, s.Contains("pet-2"))
	require.Equal(t, []string{"pet-1", "pet-3"}, s.IDs())
}

func TestSet_RoundTrip(t *testing.T) {
	s := NewSet("pet-3", "pet-1", "pet-2")
	blob, err := s.Encode()
	require.NoError(t, err)
	require.JSONEq(t, `["pet-3","pet-1","pet-2"]`, string(blob))

	decoded, err := DecodeSet(blob)
	require.NoError(t, err)
	require.Equal(t, s.IDs(), decoded.IDs())
}

func TestDecodeSet_CorruptBlobIsEmpty(t *testing.T) {
	for _, blob := range []string{"not json", `{"a":1}`, `[1,2]`} {
		s, err := DecodeSet([]byte(blob))
		require.Error(t, err)
		require.NotNil(t, s)
		require.Zero(t, s.Len())
	}
}

func TestDecodeSet_DropsRepeats(t *testing.T) {
	s, err := DecodeSet([]byte(`["pet-1","pet-1","pet-2"]`))
	require.NoError(t, err)
	require.Equal(t, []string{"pet-1", "pet-2"}, s.IDs())
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	require.Equal(t, ScopeUser, s)
	require.Equal(t, "favorites_u1", s.Key("u1"))

	s, err = ParseScope(" GLOBAL")
	require.NoError(t, err)
	require.Equal(t, GlobalKey, s.Key("u1"))

	_, err = ParseScope("team")
	require.Error(t, err)
}
