package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailTokenRoundtrip(t *testing.T) {
	ts := NewTokenService("unit-test-secret")

	token, err := ts.IssueEmailToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ts.VerifyEmailToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestEmailTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a")
	verifier := NewTokenService("secret-b")

	token, err := issuer.IssueEmailToken(7)
	require.NoError(t, err)

	_, err = verifier.VerifyEmailToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestEmailTokenExpired(t *testing.T) {
	ts := NewTokenService("unit-test-secret")
	ts.ttl = -time.Minute

	token, err := ts.IssueEmailToken(7)
	require.NoError(t, err)

	_, err = ts.VerifyEmailToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestEmailTokenGarbage(t *testing.T) {
	ts := NewTokenService("unit-test-secret")

	for _, tok := range []string{"", "not-a-token", "aaaa.bbbb.cccc"} {
		_, err := ts.VerifyEmailToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestEmailTokenStaysValidAfterUse(t *testing.T) {
	ts := NewTokenService("unit-test-secret")

	token, err := ts.IssueEmailToken(9)
	require.NoError(t, err)

	// Verification is stateless; a link may be followed more than once.
	for i := 0; i < 3; i++ {
		userID, err := ts.VerifyEmailToken(token)
		require.NoError(t, err)
		assert.Equal(t, 9, userID)
	}
}
