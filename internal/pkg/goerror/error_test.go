package goerror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_String(t *testing.T) {
	assert.Equal(t, "ERROR_TYPE_SERVER", TypeServer.String())
	assert.Equal(t, "ERROR_TYPE_CONFIG", TypeConfig.String())
	assert.Equal(t, "ERROR_TYPE_TRANSIENT", TypeTransient.String())
	assert.Equal(t, "ERROR_TYPE_PROVIDER", TypeProvider.String())
	assert.Equal(t, "ERROR_TYPE_PERSISTENCE", TypePersistence.String())
	assert.Equal(t, "ERROR_TYPE_UNKNOWN", Type(99).String())
}

func TestNewConfig_CarriesFields(t *testing.T) {
	err := NewConfig("missing brokerage credentials", "UPSTOX_USERNAME", "UPSTOX_TOTP_SECRET")

	var gerr *Error
	require.True(t, errors.As(err, &gerr))

	assert.Equal(t, TypeConfig, gerr.Type())
	assert.Equal(t, "missing brokerage credentials", gerr.Msg())
	assert.Equal(t, []string{"UPSTOX_USERNAME", "UPSTOX_TOTP_SECRET"}, gerr.Fields())
	assert.Equal(t, "missing brokerage credentials", gerr.Error())
}

func TestNewTransient_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransient(cause, "database connection failed after retries")

	var gerr *Error
	require.True(t, errors.As(err, &gerr))

	assert.Equal(t, TypeTransient, gerr.Type())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "database connection failed after retries: connection refused", gerr.Error())
}

func TestNewProvider_WithoutCause(t *testing.T) {
	err := NewProvider("Invalid TOTP", nil)

	var gerr *Error
	require.True(t, errors.As(err, &gerr))

	assert.Equal(t, TypeProvider, gerr.Type())
	assert.Equal(t, "Invalid TOTP", gerr.Error())
	assert.Nil(t, gerr.Unwrap())
}

func TestNewServer_And_NewPersistence(t *testing.T) {
	cause := errors.New("boom")

	var gerr *Error
	require.True(t, errors.As(NewServer(cause), &gerr))
	assert.Equal(t, TypeServer, gerr.Type())

	require.True(t, errors.As(NewPersistence(cause, "token upsert failed"), &gerr))
	assert.Equal(t, TypePersistence, gerr.Type())
}

func TestError_String(t *testing.T) {
	err := NewConfig("missing brokerage credentials", "UPSTOX_PIN_CODE")

	var gerr *Error
	require.True(t, errors.As(err, &gerr))

	s := gerr.String()
	assert.Contains(t, s, "ERROR_TYPE_CONFIG")
	assert.Contains(t, s, "UPSTOX_PIN_CODE")
}

func TestError_EmptyFallback(t *testing.T) {
	e := &Error{}
	assert.Equal(t, "unknown error", e.Error())
}
