package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("s3cret")
	token, err := v.Issue("user-1", "one@example.com", time.Hour)
	require.NoError(t, err)

	p, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", p.UserID)
	require.Equal(t, "one@example.com", p.Email)
}

func TestVerifier_RejectsForeignSecret(t *testing.T) {
	token, err := NewVerifier("other").Issue("user-1", "", time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("s3cret").Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_RejectsExpired(t *testing.T) {
	v := NewVerifier("s3cret")
	token, err := v.Issue("user-1", "", -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	require.Nil(t, NewVerifier("  "))
	_, err := (*Verifier)(nil).Verify("x")
	require.ErrorIs(t, err, ErrInvalidToken)
}
