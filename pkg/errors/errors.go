// Package errors provides a structured error system for the exporter with error codes, categories, and context.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a structured error code for exporter operations.
type ErrorCode string

// Error code constants organized by category.
const (
	// Configuration errors
	ErrCodeInvalidConfig    ErrorCode = "INVALID_CONFIG"
	ErrCodeMissingConfig    ErrorCode = "MISSING_CONFIG"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"
	ErrCodeConfigLoad       ErrorCode = "CONFIG_LOAD"

	// Connection errors
	ErrCodeConnectionFailed  ErrorCode = "CONNECTION_FAILED"
	ErrCodeConnectionTimeout ErrorCode = "CONNECTION_TIMEOUT"
	ErrCodeConnectionRefused ErrorCode = "CONNECTION_REFUSED"
	ErrCodeNetworkError      ErrorCode = "NETWORK_ERROR"

	// Upstream API errors
	ErrCodeHTTPStatus    ErrorCode = "HTTP_STATUS"
	ErrCodeUnauthorized  ErrorCode = "HTTP_UNAUTHORIZED"
	ErrCodeServerError   ErrorCode = "HTTP_SERVER_ERROR"
	ErrCodeDecodeFailed  ErrorCode = "DECODE_FAILED"
	ErrCodeEmptyResponse ErrorCode = "EMPTY_RESPONSE"

	// Collection errors
	ErrCodeEnumerateFailed ErrorCode = "ENUMERATE_FAILED"
	ErrCodeSampleFailed    ErrorCode = "SAMPLE_FAILED"
	ErrCodeUnknownMetric   ErrorCode = "UNKNOWN_METRIC"

	// Operation errors
	ErrCodeOperationTimeout  ErrorCode = "OPERATION_TIMEOUT"
	ErrCodeOperationCanceled ErrorCode = "OPERATION_CANCELED"
	ErrCodeRetryExhausted    ErrorCode = "RETRY_EXHAUSTED"

	// Internal errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrCodeUnknownError  ErrorCode = "UNKNOWN_ERROR"
)

// ErrorCategory represents the general category of an error.
type ErrorCategory string

const (
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryConnection    ErrorCategory = "connection"
	CategoryUpstream      ErrorCategory = "upstream"
	CategoryCollection    ErrorCategory = "collection"
	CategoryOperation     ErrorCategory = "operation"
	CategoryInternal      ErrorCategory = "internal"
)

// ExporterError represents a structured error with context and metadata.
type ExporterError struct {
	Code     ErrorCode     `json:"code"`
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`

	Context   map[string]string `json:"context,omitempty"`
	Cause     error             `json:"-"` // Not serialized to avoid circular refs
	Timestamp time.Time         `json:"timestamp"`

	Component string `json:"component"`
	Operation string `json:"operation,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`

	Retryable  bool `json:"retryable"`
	HTTPStatus int  `json:"http_status,omitempty"`
}

// Error implements the error interface.
func (e *ExporterError) Error() string {
	if e.Component != "" {
		if e.Operation != "" {
			return fmt.Sprintf("[%s:%s] %s: %s", e.Component, e.Operation, e.Code, e.Message)
		}
		return fmt.Sprintf("[%s] %s: %s", e.Component, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error wrapping compatibility.
func (e *ExporterError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error (for errors.Is compatibility).
func (e *ExporterError) Is(target error) bool {
	if exporterErr, ok := target.(*ExporterError); ok {
		return e.Code == exporterErr.Code
	}
	return false
}

// String returns a detailed string representation for logging.
func (e *ExporterError) String() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Code=%s", e.Code))
	parts = append(parts, fmt.Sprintf("Category=%s", e.Category))
	parts = append(parts, fmt.Sprintf("Message=%q", e.Message))

	if e.Component != "" {
		parts = append(parts, fmt.Sprintf("Component=%s", e.Component))
	}

	if e.Operation != "" {
		parts = append(parts, fmt.Sprintf("Operation=%s", e.Operation))
	}

	if e.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("Endpoint=%s", e.Endpoint))
	}

	if e.Retryable {
		parts = append(parts, "Retryable=true")
	}

	if e.HTTPStatus != 0 {
		parts = append(parts, fmt.Sprintf("HTTPStatus=%d", e.HTTPStatus))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause=%q", e.Cause.Error()))
	}

	return fmt.Sprintf("ExporterError{%s}", strings.Join(parts, ", "))
}

// JSON returns the error as a JSON string.
func (e *ExporterError) JSON() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal error: %s"}`, err.Error())
	}
	return string(data)
}

// NewError creates a new exporter error with default values.
func NewError(code ErrorCode, message string) *ExporterError {
	return &ExporterError{
		Code:      code,
		Category:  GetCategory(code),
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]string),
		Retryable: IsRetryableByDefault(code),
	}
}

// GetCategory determines the category based on the error code.
func GetCategory(code ErrorCode) ErrorCategory {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INVALID_CONFIG") || strings.HasPrefix(codeStr, "MISSING_CONFIG") ||
		strings.HasPrefix(codeStr, "CONFIG_"):
		return CategoryConfiguration
	case strings.HasPrefix(codeStr, "CONNECTION_") || strings.HasPrefix(codeStr, "NETWORK_"):
		return CategoryConnection
	case strings.HasPrefix(codeStr, "HTTP_") || strings.HasPrefix(codeStr, "DECODE_") ||
		strings.HasPrefix(codeStr, "EMPTY_"):
		return CategoryUpstream
	case strings.HasPrefix(codeStr, "ENUMERATE_") || strings.HasPrefix(codeStr, "SAMPLE_") ||
		strings.HasPrefix(codeStr, "UNKNOWN_METRIC"):
		return CategoryCollection
	case strings.HasPrefix(codeStr, "OPERATION_") || strings.HasPrefix(codeStr, "RETRY_"):
		return CategoryOperation
	default:
		return CategoryInternal
	}
}

// IsRetryableByDefault determines if an error is retryable by default.
// Only connection establishment failures and timeouts are retried; an
// upstream HTTP status is final no matter how many attempts remain.
func IsRetryableByDefault(code ErrorCode) bool {
	retryableCodes := map[ErrorCode]bool{
		ErrCodeConnectionTimeout: true,
		ErrCodeConnectionFailed:  true,
		ErrCodeConnectionRefused: true,
		ErrCodeNetworkError:      true,
		ErrCodeOperationTimeout:  true,
	}
	return retryableCodes[code]
}

// IsRetryable reports whether err carries a retryable exporter error.
func IsRetryable(err error) bool {
	if exporterErr, ok := err.(*ExporterError); ok {
		return exporterErr.Retryable
	}
	return false
}

// WithContext adds contextual information to an error
func (e *ExporterError) WithContext(key, value string) *ExporterError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithComponent sets the component for an error
func (e *ExporterError) WithComponent(component string) *ExporterError {
	e.Component = component
	return e
}

// WithOperation sets the operation for an error
func (e *ExporterError) WithOperation(operation string) *ExporterError {
	e.Operation = operation
	return e
}

// WithEndpoint records the URL the failing request was issued against
func (e *ExporterError) WithEndpoint(endpoint string) *ExporterError {
	e.Endpoint = endpoint
	return e
}

// WithCause sets the underlying cause
func (e *ExporterError) WithCause(cause error) *ExporterError {
	e.Cause = cause
	return e
}

// WithHTTPStatus records the upstream response status
func (e *ExporterError) WithHTTPStatus(status int) *ExporterError {
	e.HTTPStatus = status
	return e
}
