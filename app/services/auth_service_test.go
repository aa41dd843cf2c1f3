package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetcrumb/shop/app/models"
)

func TestRegisterAndLogin(t *testing.T) {
	setupDB(t)
	svc := NewAuthService()

	user, err := svc.Register("Ada", "ada@test.dev", "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "correcthorse", user.Password, "password must be hashed")

	token, got, err := svc.Login("ada@test.dev", "correcthorse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupDB(t)
	svc := NewAuthService()

	_, err := svc.Register("Ada", "ada@test.dev", "correcthorse")
	require.NoError(t, err)

	_, err = svc.Register("Imposter", "ada@test.dev", "battery-staple")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	setupDB(t)
	svc := NewAuthService()

	_, err := svc.Register("Ada", "ada@test.dev", "correcthorse")
	require.NoError(t, err)

	_, _, err = svc.Login("ada@test.dev", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@test.dev", "correcthorse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
