package model

import (
	"errors"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "without wrapped error",
			err: &APIError{
				Code:    "TEST_ERROR",
				Message: "something went wrong",
			},
			want: "TEST_ERROR: something went wrong",
		},
		{
			name: "with wrapped error",
			err: &APIError{
				Code:    "TEST_ERROR",
				Message: "something went wrong",
				Err:     errors.New("underlying cause"),
			},
			want: "TEST_ERROR: something went wrong (underlying cause)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &APIError{
		Code:    "TEST",
		Message: "test",
		Err:     underlying,
	}

	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}

	errNoWrap := &APIError{Code: "TEST", Message: "test"}
	if errNoWrap.Unwrap() != nil {
		t.Error("Unwrap() should return nil when no wrapped error")
	}
}

func TestSentinelMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		sentinel error
		status   int
	}{
		{"auth missing", NewAuthMissingError("no token"), ErrAuthMissing, 401},
		{"validation", NewValidationError("quantity", "exceeds stock"), ErrValidation, 400},
		{"network", NewNetworkError("cart", errors.New("dial timeout")), ErrNetwork, 0},
		{"server rejected", NewServerRejectedError("order", 500, "boom"), ErrServerRejected, 500},
		{"decode", NewDecodeError("catalog", errors.New("unexpected EOF")), ErrDecode, 502},
		{"rate limited", NewRateLimitError("cart"), ErrRateLimited, 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("error should wrap %v sentinel", tt.sentinel)
			}
			if tt.err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.status)
			}
		})
	}
}

func TestNewServerRejectedError_Body(t *testing.T) {
	err := NewServerRejectedError("order", 400, "insufficient stock")
	want := "order returned status 400: insufficient stock"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}

	noBody := NewServerRejectedError("order", 503, "")
	if noBody.Message != "order returned status 503" {
		t.Errorf("Message = %q, want bare status message", noBody.Message)
	}
}
