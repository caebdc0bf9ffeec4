package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestStatusError(t *testing.T) {
	t.Run("unwraps to unauthorized on 401", func(t *testing.T) {
		err := NewStatusError("POST /api/token/", http.StatusUnauthorized, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
		assert.Equal(t, "POST /api/token/: status 401", err.Error())
	})

	t.Run("unwraps to unexpected status otherwise", func(t *testing.T) {
		err := NewStatusError("POST /api/customers/", http.StatusBadRequest, `{"username":["exists"]}`)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.False(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("status code of plain error is zero", func(t *testing.T) {
		assert.Equal(t, 0, StatusCode(errors.New("boom")))
	})
}

func TestWrapTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapTransportError("GET /api/customers/", cause)

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[TRANSPORT] GET /api/customers/ failed", err.Error())
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{
		{Field: "username", Message: "is required"},
		{Field: "amount", Message: "is required"},
	}

	assert.ErrorIs(t, fe, ErrValidation)
	assert.Equal(t, []string{"username", "amount"}, fe.Fields())
	assert.Equal(t, "validation failed for field 'username': is required (and 1 more)", fe.Error())
}
