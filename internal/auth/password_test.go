package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		hash, err := HashPassword("hunter22", bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, ComparePassword(hash, "hunter22"))
		assert.Error(t, ComparePassword(hash, "wrong"))
	})

	t.Run("out-of-range cost falls back to default", func(t *testing.T) {
		hash, err := HashPassword("hunter22", -1)
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}
