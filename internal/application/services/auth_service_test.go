package services

import (
	"testing"

	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthServiceRequiresConfig(t *testing.T) {
	logger := logging.NewDiscardLogger()

	_, err := NewAuthService("", "secret", logger)
	assert.Error(t, err)

	_, err = NewAuthService("password", "", logger)
	assert.Error(t, err)
}

func TestLoginAndValidate(t *testing.T) {
	service, err := NewAuthService("hunter2", "test-secret", logging.NewDiscardLogger())
	require.NoError(t, err)

	_, err = service.Login("wrong")
	assert.Error(t, err)

	token, err := service.Login("hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["role"])

	_, err = service.Validate("not-a-token")
	assert.Error(t, err)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuer, err := NewAuthService("hunter2", "secret-a", logging.NewDiscardLogger())
	require.NoError(t, err)
	verifier, err := NewAuthService("hunter2", "secret-b", logging.NewDiscardLogger())
	require.NoError(t, err)

	token, err := issuer.Login("hunter2")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	service, err := NewAuthService("hunter2", "test-secret", logging.NewDiscardLogger())
	require.NoError(t, err)

	token, err := service.Login("hunter2")
	require.NoError(t, err)

	refreshed, err := service.Refresh(token)
	require.NoError(t, err)
	_, err = service.Validate(refreshed)
	assert.NoError(t, err)

	_, err = service.Refresh("garbage")
	assert.Error(t, err)
}
