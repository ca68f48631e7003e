package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, hasher.Compare(hash, "correct horse battery"))
	assert.Error(t, hasher.Compare(hash, "wrong password"))
}

func TestHashRejectsShortPassword(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	_, err := hasher.Hash("short")
	assert.Error(t, err)
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	hasher := NewBcryptHasher(1000)

	// An out-of-range cost falls back to the default instead of failing.
	hash, err := hasher.Hash("a long enough password")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestGenerateRandomPassword(t *testing.T) {
	pw, err := GenerateRandomPassword(12)
	require.NoError(t, err)
	assert.Len(t, pw, 12)

	// Below the minimum the length is raised, not rejected.
	pw, err = GenerateRandomPassword(3)
	require.NoError(t, err)
	assert.Len(t, pw, MinPasswordLen)

	other, err := GenerateRandomPassword(12)
	require.NoError(t, err)
	assert.NotEqual(t, pw, other)
}
