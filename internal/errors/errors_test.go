package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Access code not found")
		assert.Equal(t, "NOT_FOUND: Access code not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := Wrap(ErrCodeStorage, "Storage error", cause)
		assert.Contains(t, err.Error(), "STORAGE_ERROR")
		assert.Contains(t, err.Error(), "Storage error")
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "code", "reason": "empty"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"NotFound", func() *AppError { return NotFound("Access code") }, ErrCodeNotFound},
		{"AlreadyUsed", func() *AppError { return AlreadyUsed() }, ErrCodeAlreadyUsed},
		{"NotOneTime", func() *AppError { return NotOneTime() }, ErrCodeNotOneTime},
		{"NotUsed", func() *AppError { return NotUsed() }, ErrCodeNotUsed},
		{"AlreadyExists", func() *AppError { return AlreadyExists("Access code") }, ErrCodeAlreadyExists},
		{"ProtectedCode", func() *AppError { return ProtectedCode() }, ErrCodeProtectedCode},
		{"InvalidAdmin", func() *AppError { return InvalidAdmin() }, ErrCodeInvalidAdmin},
		{"InvalidSession", func() *AppError { return InvalidSession("expired") }, ErrCodeInvalidSession},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"MissingRequired", func() *AppError { return MissingRequired("code") }, ErrCodeMissingRequired},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Run("IsAppError detects wrapped AppError", func(t *testing.T) {
		appErr := NotFound("Access code")
		assert.True(t, IsAppError(appErr))
		assert.False(t, IsAppError(errors.New("plain")))
	})

	t.Run("AsAppError unwraps", func(t *testing.T) {
		appErr, ok := AsAppError(AlreadyUsed())
		assert.True(t, ok)
		assert.Equal(t, ErrCodeAlreadyUsed, appErr.Code)

		_, ok = AsAppError(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("GetCode defaults to internal", func(t *testing.T) {
		assert.Equal(t, ErrCodeAlreadyUsed, GetCode(AlreadyUsed()))
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	})
}
