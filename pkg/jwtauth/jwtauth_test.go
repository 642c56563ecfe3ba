package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(7, "maria", []string{"ADMIN"}, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)

	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, []string{"ADMIN"}, claims.Roles)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(7, "maria", nil, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken(7, "maria", nil, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.Error(t, err)
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	_, err := GenerateToken(7, "maria", nil, "", time.Hour)
	assert.Error(t, err)
}
