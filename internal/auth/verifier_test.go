package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/smallbiznis/agrichar/internal/config"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testConfig() config.Config {
	return config.Config{
		AuthJWTSecret:   testSecret,
		AuthJWTIssuer:   "https://auth.example.test",
		AuthJWTAudience: "authenticated",
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "farmer-a",
			Issuer:    "https://auth.example.test",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestVerifyAcceptsProviderToken(t *testing.T) {
	v, err := NewVerifier(testConfig())
	require.NoError(t, err)

	owner, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "farmer-a", owner.ID)
	assert.Equal(t, ownercontext.RoleFarmer, owner.Role)
}

func TestVerifyReadsAdminRole(t *testing.T) {
	v, err := NewVerifier(testConfig())
	require.NoError(t, err)

	claims := validClaims()
	claims.AppMetadata.Role = "Admin"
	owner, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
	require.NoError(t, err)
	assert.True(t, owner.IsAdmin())
}

func TestVerifyRejects(t *testing.T) {
	v, err := NewVerifier(testConfig())
	require.NoError(t, err)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://elsewhere.test"

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"service_role"}

	noSubject := validClaims()
	noSubject.Subject = ""

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims()),
		"wrong method":   sign(t, jwt.SigningMethodHS384, []byte(testSecret), validClaims()),
		"expired":        sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"wrong issuer":   sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer),
		"wrong audience": sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAudience),
		"no subject":     sign(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(raw)
			assert.Error(t, err)
		})
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier(config.Config{})
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = BearerToken("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
