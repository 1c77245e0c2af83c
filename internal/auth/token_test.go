package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	token, exp, err := tm.GenerateToken(&domain.User{ID: "u-1", Role: domain.RoleManager})
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)

	_, err = NewTokenManager("other", 60).ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
