package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("WAL_004", "Insufficient funds", http.StatusPaymentRequired),
			expected: "[WAL_004] Insufficient funds",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("WAL_003", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestWalletErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"WalletNotFound", ErrWalletNotFound(), "WAL_001", 404},
		{"WalletExists", ErrWalletExists(), "WAL_002", 409},
		{"InvalidAmount", ErrInvalidAmount(), "WAL_003", 400},
		{"InsufficientFunds", ErrInsufficientFunds(), "WAL_004", 402},
		{"DuplicateRequest", ErrDuplicateRequest(), "WAL_005", 409},
		{"ConcurrencyConflict", ErrConcurrencyConflict(), "WAL_006", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(ErrDuplicateRequest(), CodeDuplicateRequest))
	assert.True(t, HasCode(fmt.Errorf("wrapped: %w", ErrWalletNotFound()), CodeWalletNotFound))
	assert.False(t, HasCode(ErrWalletNotFound(), CodeDuplicateRequest))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestSystemErrors(t *testing.T) {
	dbErr := ErrDatabaseError(fmt.Errorf("timeout"))
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, http.StatusInternalServerError, dbErr.HTTPStatus)

	internal := InternalError(fmt.Errorf("boom"))
	assert.Equal(t, "SYS_001", internal.Code)
	assert.ErrorContains(t, internal, "boom")
}

func TestValidation(t *testing.T) {
	err := Validation("idempotency key is required")
	assert.Equal(t, CodeInvalidAmount, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Contains(t, err.Message, "idempotency key")
}
