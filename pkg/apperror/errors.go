package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes, grouped by family. Wallet outcomes map to stable codes so a
// client can tell "try again" from "this will never succeed" from "it
// already happened".
const (
	CodeWalletNotFound      = "WAL_001"
	CodeWalletExists        = "WAL_002"
	CodeInvalidAmount       = "WAL_003"
	CodeInsufficientFunds   = "WAL_004"
	CodeDuplicateRequest    = "WAL_005"
	CodeConcurrencyConflict = "WAL_006"
	CodeInternal            = "SYS_001"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ---- Wallet outcomes (WAL) ----

func ErrWalletNotFound() *AppError {
	return New(CodeWalletNotFound, "Wallet not found", http.StatusNotFound)
}

func ErrWalletExists() *AppError {
	return New(CodeWalletExists, "Wallet already exists for this player", http.StatusConflict)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient balance in wallet", http.StatusPaymentRequired)
}

// ErrDuplicateRequest signals that a mutation with the same idempotency key
// has already been applied. The HTTP layer surfaces it as success-equivalent.
func ErrDuplicateRequest() *AppError {
	return New(CodeDuplicateRequest, "Request already applied", http.StatusConflict)
}

// ErrConcurrencyConflict is the terminal outcome after the engine's retry
// budget for optimistic-lock conflicts is exhausted.
func ErrConcurrencyConflict() *AppError {
	return New(CodeConcurrencyConflict, "Concurrent update conflict, please retry", http.StatusConflict)
}

// Validation returns a WAL_003-style validation error with a custom message.
func Validation(message string) *AppError {
	return New(CodeInvalidAmount, message, http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
