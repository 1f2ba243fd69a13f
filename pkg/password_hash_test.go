package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("squat-rack")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordHashCost, cost)

	assert.True(t, CheckPasswordHash("squat-rack", hash))
	assert.False(t, CheckPasswordHash("bench-press", hash))
	assert.False(t, CheckPasswordHash("squat-rack", "not-a-hash"))
}

func TestHashPassword_Empty(t *testing.T) {
	hash, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
	assert.Empty(t, hash)
}
