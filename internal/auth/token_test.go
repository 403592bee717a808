package auth

import (
	"strings"
	"testing"
	"time"

	"gigbuddy/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret-0123456789")
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Issue(42, "alice@example.com", models.RoleMember)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), identity.ID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, models.RoleMember, identity.Role)
	assert.False(t, identity.IsAdmin())
}

func TestVerifyAdminRole(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Issue(1, "root@example.com", models.RoleAdmin)
	require.NoError(t, err)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := newTestService(t)

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(7, "bob@example.com", models.RoleMember)
	require.NoError(t, err)

	// Jump past the TTL. Expiry must be distinguishable from tampering.
	svc.now = func() time.Time { return issuedAt.Add(TokenTTL + time.Minute) }

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyTokenValidJustBeforeExpiry(t *testing.T) {
	svc := newTestService(t)

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue(7, "bob@example.com", models.RoleMember)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(TokenTTL - time.Minute) }

	_, err = svc.Verify(token)
	assert.NoError(t, err)
}

func TestVerifyTamperedToken(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Issue(7, "bob@example.com", models.RoleMember)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyGarbageToken(t *testing.T) {
	svc := newTestService(t)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Verify(tokenString)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	svc := newTestService(t)

	other, err := NewTokenService("a-different-secret")
	require.NoError(t, err)

	token, err := other.Issue(7, "bob@example.com", models.RoleMember)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	svc := newTestService(t)

	claims := jwt.MapClaims{
		"sub":  "7",
		"role": "admin",
		"iss":  tokenIssuer,
		"aud":  tokenAudience,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	svc := newTestService(t)

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  "7",
		"role": "superuser",
		"iss":  tokenIssuer,
		"aud":  tokenAudience,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	svc := newTestService(t)

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  "7",
		"role": "member",
		"iss":  "someone-else",
		"aud":  tokenAudience,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
