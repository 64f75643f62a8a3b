package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_Issue(t *testing.T) {
	cfg := testutil.TestConfig()
	tokens := NewTokenService(cfg)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return fixed }

	user := &models.User{ID: 42, Role: models.RoleAdmin, TokenVersion: 3}
	signed, err := tokens.Issue(user)
	require.NoError(t, err)

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return fixed.Add(time.Minute) }),
	)
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, cfg.JWTIssuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{cfg.JWTAudience}, claims.Audience)
	assert.Equal(t, fixed.Add(cfg.JWTTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	tokens := NewTokenService(testutil.TestConfig())
	signed, err := tokens.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(signed, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("another-secret"), nil
	})
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}
