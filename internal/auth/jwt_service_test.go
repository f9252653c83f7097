package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = Identity{
	ID:    "2f7c1a1e-0000-0000-0000-000000000001",
	Email: "alice@codecrafting.fr",
	Name:  "Alice Codecraft",
	Role:  "admin",
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", 7*24*time.Hour)

	token, err := svc.Issue(testIdentity, ProviderCredentials)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, testIdentity.ID, claims.UserID)
	assert.Equal(t, testIdentity.Email, claims.Email)
	assert.Equal(t, testIdentity.Name, claims.Name)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, ProviderCredentials, claims.Provider)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-one", time.Hour)
	verifier := NewJWTService("secret-two", time.Hour)

	token, err := issuer.Issue(testIdentity, ProviderCredentials)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, err := svc.Issue(testIdentity, ProviderCredentials)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshPreservesClaims(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Issue(testIdentity, ProviderGoogle)
	require.NoError(t, err)
	claims, err := svc.Verify(token)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(claims)
	require.NoError(t, err)

	refreshedClaims, err := svc.Verify(refreshed)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, refreshedClaims.UserID)
	assert.Equal(t, claims.Email, refreshedClaims.Email)
	assert.Equal(t, claims.Role, refreshedClaims.Role)
	assert.Equal(t, ProviderGoogle, refreshedClaims.Provider)
	assert.False(t, refreshedClaims.ExpiresAt.Before(claims.ExpiresAt.Time))
}

func TestToSessionViewStripsInternalFields(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Issue(testIdentity, ProviderCredentials)
	require.NoError(t, err)
	claims, err := svc.Verify(token)
	require.NoError(t, err)

	view := ToSessionView(claims)
	assert.Equal(t, testIdentity.ID, view.User.ID)
	assert.Equal(t, testIdentity.Email, view.User.Email)
	assert.Equal(t, testIdentity.Name, view.User.Name)
	assert.Equal(t, "admin", view.User.Role)
}
