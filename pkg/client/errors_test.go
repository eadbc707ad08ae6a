package client

import (
	"errors"
	"testing"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		expected   bool
	}{
		{
			name:       "client error should not retry",
			errorClass: ErrorClassClient,
			expected:   false,
		},
		{
			name:       "server error should retry",
			errorClass: ErrorClassServer,
			expected:   true,
		},
		{
			name:       "rate limit should retry",
			errorClass: ErrorClassRateLimit,
			expected:   true,
		},
		{
			name:       "network error should retry",
			errorClass: ErrorClassNetwork,
			expected:   true,
		},
		{
			name:       "empty error class should not retry",
			errorClass: "",
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shouldRetry(tt.errorClass)
			if result != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, result, tt.expected)
			}
		})
	}
}

func TestRequestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		reqError *RequestError
		expected string
	}{
		{
			name: "error with wrapped error",
			reqError: &RequestError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			expected: "feed network error (status 0): request failed: connection refused",
		},
		{
			name: "error without wrapped error",
			reqError: &RequestError{
				StatusCode: 503,
				ErrorClass: ErrorClassServer,
				Message:    "503 Service Unavailable",
			},
			expected: "feed server error (status 503): 503 Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.reqError.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestRequestError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	reqError := &RequestError{
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        wrappedErr,
	}

	if !errors.Is(reqError, wrappedErr) {
		t.Error("errors.Is should work with wrapped error")
	}

	empty := &RequestError{StatusCode: 404, ErrorClass: ErrorClassClient}
	if empty.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", empty.Unwrap())
	}
}
