package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected string
	}{
		{"auth code", AuthInvalidCredentials, "Invalid email or password"},
		{"user code", UserNotFound, "User not found"},
		{"transaction code", TransactionInsufficientFunds, "Insufficient funds"},
		{"unknown code", ErrorCode("NOPE_001"), "An error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorMessage(tt.code))
		})
	}
}

func TestIsValidErrorCode(t *testing.T) {
	assert.True(t, IsValidErrorCode(AuthMissingToken))
	assert.True(t, IsValidErrorCode(SystemRateLimitExceeded))
	assert.False(t, IsValidErrorCode(ErrorCode("NOPE_001")))
	assert.False(t, IsValidErrorCode(ErrorCode("")))
}

func TestEveryCodeHasAMessage(t *testing.T) {
	codes := []ErrorCode{
		AuthInvalidCredentials, AuthMissingToken, AuthExpiredToken,
		AuthInvalidTokenFormat, AuthInsufficientPermission, AuthAccountLocked,
		ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat,
		UserNotFound, UserAlreadyExists, UserInvalidID,
		AccountNotFound, AccountInvalidNumber, AccountNumberTaken, AccountNotCredit,
		TransactionNotFound, TransactionInvalidAmount, TransactionInsufficientFunds,
		TransactionRecipientNotFound, TransactionSameAccount,
		SystemInternalError, SystemDatabaseError, SystemRateLimitExceeded,
	}

	for _, code := range codes {
		assert.True(t, IsValidErrorCode(code), string(code))
		assert.NotEmpty(t, GetErrorMessage(code), string(code))
	}
}
