package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcore/internal/models"
)

func TestRegisterHashesAndDefaults(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, NewAuthService())

	user := &models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, svc.Register(user, "s3cret-pass"))

	stored := repo.users[user.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.True(t, NewAuthService().ComparePassword(stored.PasswordHash, "s3cret-pass"))
	assert.False(t, stored.IsVerified)
	assert.True(t, stored.IsActive)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	existing := &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	svc := NewUserService(newFakeUserRepo(existing), NewAuthService())

	err := svc.Register(&models.User{Username: "bob", Email: "alice@example.com"}, "password1")
	assert.ErrorIs(t, err, ErrEmailTaken)

	err = svc.Register(&models.User{Username: "alice", Email: "new@example.com"}, "password1")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestGetUserByLoginFallsBackToEmail(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	svc := NewUserService(newFakeUserRepo(user), NewAuthService())

	byName, err := svc.GetUserByLogin("alice")
	require.NoError(t, err)
	require.NotNil(t, byName)

	byEmail, err := svc.GetUserByLogin("alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, byName.ID, byEmail.ID)
}

func TestRefreshRotation(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	svc := NewUserService(newFakeUserRepo(user), NewAuthService())

	token, err := svc.IssueRefresh(1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	rotatedUser, newToken, err := svc.RotateRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, 1, rotatedUser.ID)
	assert.NotEqual(t, token, newToken)

	// the old token is spent
	_, _, err = svc.RotateRefresh(token)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRefreshExpiredAndRevoked(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	repo := newFakeUserRepo(user)
	svc := NewUserService(repo, NewAuthService())

	token, err := svc.IssueRefresh(1)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	user.RefreshExpiresAt = &past
	_, _, err = svc.RotateRefresh(token)
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	token, err = svc.IssueRefresh(1)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeRefresh(1))
	_, _, err = svc.RotateRefresh(token)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}
