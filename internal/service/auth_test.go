package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
)

func TestAuthService_TokenRoundTrip(t *testing.T) {
	t.Run("A generated token verifies back to the same identity", func(t *testing.T) {
		// Given: an auth service and a registered identity
		auth := NewAuthService("test-secret")
		identity := &entity.Identity{UserID: 42, Username: "alice"}

		// When: minting and verifying a token
		token, err := auth.GenerateToken(identity)
		require.NoError(t, err)

		verified, err := auth.VerifyToken(token)

		// Then: the identity survives the round trip
		require.NoError(t, err)
		assert.Equal(t, identity.UserID, verified.UserID)
		assert.Equal(t, identity.Username, verified.Username)
	})

	t.Run("A token signed with a different secret is rejected", func(t *testing.T) {
		// Given: tokens from one service presented to another
		minter := NewAuthService("secret-one")
		verifier := NewAuthService("secret-two")

		token, err := minter.GenerateToken(&entity.Identity{UserID: 1, Username: "mallory"})
		require.NoError(t, err)

		// When/Then: verification fails
		_, err = verifier.VerifyToken(token)
		require.Error(t, err)
	})

	t.Run("Garbage is rejected", func(t *testing.T) {
		auth := NewAuthService("test-secret")

		_, err := auth.VerifyToken("not-a-token")

		require.Error(t, err)
	})
}
