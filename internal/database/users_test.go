package database

import (
	"context"
	"testing"

	"github.com/bboykorg/filecloude/internal/auth"
	"github.com/bboykorg/filecloude/internal/models"
	"github.com/stretchr/testify/require"
)

func createRandomUser(t *testing.T, username string) *models.User {
	hashedPassword, err := auth.HashPassword("secretpassword")
	require.NoError(t, err)

	user, err := testStore.CreateUser(context.Background(), username, hashedPassword)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestCreateUser(t *testing.T) {
	user := createRandomUser(t, "create_user_test")

	require.Equal(t, "create_user_test", user.Username)
	require.NotEmpty(t, user.PasswordHash)
	require.NotZero(t, user.ID)
	require.NotZero(t, user.CreatedAt)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	createRandomUser(t, "duplicate_user_test")

	_, err := testStore.CreateUser(context.Background(), "duplicate_user_test", "anotherhash")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestGetUserByUsername(t *testing.T) {
	created := createRandomUser(t, "lookup_user_test")

	foundUser, err := testStore.GetUserByUsername(context.Background(), "lookup_user_test")
	require.NoError(t, err)
	require.NotNil(t, foundUser)

	require.Equal(t, created.ID, foundUser.ID)
	require.Equal(t, "lookup_user_test", foundUser.Username)
	require.NotEmpty(t, foundUser.PasswordHash)

	nonExistentUser, err := testStore.GetUserByUsername(context.Background(), "nonexistent")
	require.NoError(t, err)
	require.Nil(t, nonExistentUser)
}

func TestGetUserByID(t *testing.T) {
	created := createRandomUser(t, "lookup_by_id_test")

	foundUser, err := testStore.GetUserByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, foundUser)
	require.Equal(t, created.Username, foundUser.Username)

	missing, err := testStore.GetUserByID(context.Background(), 999999)
	require.NoError(t, err)
	require.Nil(t, missing)
}
