package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() Identity {
	return Identity{
		UserID:   42,
		Email:    "admin@velora.shop",
		Name:     "Store Admin",
		Role:     "admin",
		UserType: "admin",
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	tokens := NewTokens([]byte("secret"))

	signed, err := tokens.Issue(testIdentity())
	require.NoError(t, err)

	id, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, testIdentity(), *id)
}

func TestVerify_WrongSecret(t *testing.T) {
	signed, err := NewTokens([]byte("secret")).Issue(testIdentity())
	require.NoError(t, err)

	_, err = NewTokens([]byte("other")).Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	tokens := NewTokens([]byte("secret"))
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tokens.now = func() time.Time { return issued }
	signed, err := tokens.Issue(testIdentity())
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(DefaultTTL + time.Minute) }
	_, err = tokens.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_NotYetExpired(t *testing.T) {
	tokens := NewTokens([]byte("secret"))
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tokens.now = func() time.Time { return issued }
	signed, err := tokens.Issue(testIdentity())
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(DefaultTTL - time.Minute) }
	_, err = tokens.Verify(signed)
	require.NoError(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	tokens := NewTokens([]byte("secret"))

	_, err := tokens.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsUnsignedToken(t *testing.T) {
	claims := Claims{
		Identity: testIdentity(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokens([]byte("secret")).Verify(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}
