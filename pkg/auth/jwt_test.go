package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/config"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

func testManager(ttl time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "a-test-secret-that-is-long-enough!!",
		AccessTokenTTL:  ttl,
		RefreshTokenTTL: time.Hour,
		Issuer:          "saludvital-test",
	})
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := testManager(time.Minute)
	doctorID := uint(7)
	claims := &domain.Claims{UserID: uuid.New(), Email: "dra.soto@saludvital.cl", Role: domain.RoleDoctor, DoctorID: &doctorID}

	pair, err := m.GenerateTokenPair(claims)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	got, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, got.UserID)
	assert.Equal(t, domain.RoleDoctor, got.Role)
	require.NotNil(t, got.DoctorID)
	assert.Equal(t, uint(7), *got.DoctorID)

	_, err = m.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestTokenTypeMismatch(t *testing.T) {
	m := testManager(time.Minute)
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestExpiredAndForeignTokens(t *testing.T) {
	m := testManager(-time.Minute)
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewJWTManager(config.JWTConfig{Secret: "another-secret-entirely-0123456789", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour, Issuer: "saludvital-test"})
	pair, err = other.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
