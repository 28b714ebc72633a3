package openfigi

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of failure for one mapping call
type ErrorType string

const (
	// ErrorTypeNetwork indicates a network-level error (connection refused, DNS, retries exhausted, etc.)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeTimeout indicates the call exceeded its bounded wait
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeRateLimit indicates the service rejected the call with HTTP 429
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates a server error (HTTP 5xx)
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates a client error (HTTP 4xx except 429)
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeDecode indicates a 2xx response whose body was not a mapping result array
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeUnknown indicates an error of unknown type
	ErrorTypeUnknown ErrorType = "unknown"
)

// MappingError represents a structured failure of a whole mapping call
type MappingError struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *MappingError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *MappingError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *MappingError {
	return &MappingError{
		Type:    ErrorTypeNetwork,
		Message: "network request failed",
		Cause:   cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(cause error) *MappingError {
	return &MappingError{
		Type:    ErrorTypeTimeout,
		Message: "request timed out",
		Cause:   cause,
	}
}

// NewDecodeError creates a decode error
func NewDecodeError(cause error) *MappingError {
	return &MappingError{
		Type:    ErrorTypeDecode,
		Message: "response body is not a mapping result array",
		Cause:   cause,
	}
}

// ClassifyHTTPError classifies a non-2xx status code into a MappingError
func ClassifyHTTPError(statusCode int) *MappingError {
	msg := fmt.Sprintf("Bad response code %d", statusCode)
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &MappingError{Type: ErrorTypeRateLimit, StatusCode: statusCode, Message: msg}
	case statusCode >= 500:
		return &MappingError{Type: ErrorTypeServer, StatusCode: statusCode, Message: msg}
	case statusCode >= 400:
		return &MappingError{Type: ErrorTypeClient, StatusCode: statusCode, Message: msg}
	default:
		return &MappingError{Type: ErrorTypeUnknown, StatusCode: statusCode, Message: msg}
	}
}
