package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func fixedClock(current *time.Time) func() time.Time {
	return func() time.Time { return *current }
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.EqualError(t, err, "jwt: secret must be provided")
}

func TestNewJWTServiceDefaultsTTL(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "secret"})
	require.NoError(t, err)
	require.Equal(t, DefaultAccessTokenTTL, svc.ttl)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{
		Secret:         "super-secret",
		Issuer:         "inline-form",
		AccessTokenTTL: time.Hour,
		Clock:          fixedClock(&current),
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(TokenInput{
		UserID:   "user-123",
		RoleID:   "editor",
		Audience: []string{"permissions"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "editor", claims.RoleID)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "inline-form", claims.Issuer)
	require.Equal(t, jwt.ClaimStrings{"permissions"}, claims.Audience)
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))
}

func TestGenerateAccessTokenRequiresUser(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "secret"})
	require.NoError(t, err)

	_, err = svc.GenerateAccessToken(TokenInput{})
	require.Error(t, err)
}

func TestValidateAccessTokenInvalidSignature(t *testing.T) {
	current := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	issuer, err := NewJWTService(JWTConfig{Secret: "issuer-secret", Clock: fixedClock(&current)})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(TokenInput{UserID: "user-123"})
	require.NoError(t, err)

	verifier, err := NewJWTService(JWTConfig{Secret: "other-secret", Clock: fixedClock(&current)})
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestValidateAccessTokenExpired(t *testing.T) {
	current := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{
		Secret:         "secret",
		AccessTokenTTL: time.Minute,
		Clock:          fixedClock(&current),
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(TokenInput{UserID: "user-123"})
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)

	_, err = svc.ValidateAccessToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateAccessTokenChecksIssuer(t *testing.T) {
	current := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	other, err := NewJWTService(JWTConfig{Secret: "secret", Issuer: "someone-else", Clock: fixedClock(&current)})
	require.NoError(t, err)
	token, err := other.GenerateAccessToken(TokenInput{UserID: "user-123"})
	require.NoError(t, err)

	svc, err := NewJWTService(JWTConfig{Secret: "secret", Issuer: "inline-form", Clock: fixedClock(&current)})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.EqualError(t, err, "jwt: invalid issuer")

	_, err = svc.ValidateAccessToken("")
	require.Error(t, err)
}
