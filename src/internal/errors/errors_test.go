package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "error without cause",
			err:      &Error{Code: ErrCodeConfig, Message: "invalid configuration"},
			expected: "[CONFIG_ERROR] invalid configuration",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodePlacement, "could not place field DNS", errors.New("no [Interface] section")),
			expected: "[PLACEMENT_ERROR] could not place field DNS: no [Interface] section",
		},
		{
			name:     "auth error with cause",
			err:      Wrap(ErrCodeAuth, "token request rejected", errors.New("status 401")),
			expected: "[AUTH_ERROR] token request rejected: status 401",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "wrapper", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestError_Is(t *testing.T) {
	err1 := &Error{Code: ErrCodePlacement, Message: "test error"}
	err2 := &Error{Code: ErrCodePlacement, Message: "another error"}
	err3 := &Error{Code: ErrCodeNetwork, Message: "network error"}

	if !err1.Is(err2) {
		t.Errorf("Expected errors with same code to match")
	}

	if err1.Is(err3) {
		t.Errorf("Expected errors with different codes to not match")
	}
}

func TestErrorsIsThroughWrap(t *testing.T) {
	inner := NewPlacementError("could not place field PublicKey", nil)
	outer := NewInterfaceError("failed to update tunnel config", inner)

	if !errors.Is(outer, &Error{Code: ErrCodePlacement}) {
		t.Errorf("Expected wrapped placement error to match via errors.Is")
	}
}

func TestNewAPIError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAPIError("key exchange failed", cause)

	if err.Code != ErrCodeAPI {
		t.Errorf("Expected code %v, got %v", ErrCodeAPI, err.Code)
	}

	if err.Message != "key exchange failed" {
		t.Errorf("Expected message 'key exchange failed', got %v", err.Message)
	}

	if err.Cause != cause {
		t.Errorf("Expected cause to be preserved")
	}
}
