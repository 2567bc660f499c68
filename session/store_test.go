package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Token verification happens before any Redis round trip, so these
// paths are testable without a server.

func testStore() *RedisStore {
	return NewRedisStore(nil, "test-secret", time.Hour)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestUserIDRejectsGarbageToken(t *testing.T) {
	_, err := testStore().UserID(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUserIDRejectsWrongSecret(t *testing.T) {
	forged := signToken(t, "other-secret", jwt.MapClaims{
		"sid": "abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err := testStore().UserID(context.Background(), forged)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUserIDRejectsExpiredToken(t *testing.T) {
	expired := signToken(t, "test-secret", jwt.MapClaims{
		"sid": "abc",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err := testStore().UserID(context.Background(), expired)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUserIDRejectsMissingSID(t *testing.T) {
	token := signToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err := testStore().UserID(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClearToleratesGarbageToken(t *testing.T) {
	assert.NoError(t, testStore().Clear(context.Background(), "not-a-jwt"))
	assert.NoError(t, testStore().Clear(context.Background(), ""))
}
