package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrRateLimited matches any APIError caused by an exhausted rate limit
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrRequestFailed matches any APIError for a non-success response
	ErrRequestFailed = errors.New("request failed")
)

const (
	// MessageRateLimit is the message carried by rate limit errors
	MessageRateLimit = "rate limit exceeded"
	// MessageUnknown is used when a failed response has no status text
	MessageUnknown = "unknown error"
)

// RequestFailedMessage returns the standard message for a failed response
func RequestFailedMessage(status int) string {
	return fmt.Sprintf("Request failed: %d", status)
}

// ErrorKind classifies API errors
type ErrorKind int

const (
	// KindRequestFailed is any non-success response that is not a rate limit
	KindRequestFailed ErrorKind = iota
	// KindRateLimit is a 403 response with no remaining quota
	KindRateLimit
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	default:
		return "request_failed"
	}
}

// FieldError is a per-field validation error reported by the API
type FieldError struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
}

// RateLimitInfo holds the verbatim rate limit header values.
// A nil field means the header was absent.
type RateLimitInfo struct {
	Limit     *string `json:"limit"`
	Remaining *string `json:"remaining"`
	Reset     *string `json:"reset"`
}

// ErrorInfo is the structured payload attached to an APIError
type ErrorInfo struct {
	Message          string         `json:"message"`
	DocumentationURL string         `json:"documentation_url,omitempty"`
	Errors           []FieldError   `json:"errors,omitempty"`
	RateLimit        *RateLimitInfo `json:"rateLimitHeaders,omitempty"`
	ParseError       string         `json:"parseError,omitempty"`

	// Body is the raw decoded error body, when there was one
	Body json.RawMessage `json:"-"`
}

// APIError represents a classified non-success GitHub API response
type APIError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Info    ErrorInfo
}

// NewAPIError builds an APIError. Info.Message defaults to message when empty.
func NewAPIError(kind ErrorKind, message string, status int, info ErrorInfo) *APIError {
	if info.Message == "" {
		info.Message = message
	}
	return &APIError{
		Kind:    kind,
		Message: message,
		Status:  status,
		Info:    info,
	}
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Info.Message != "" && e.Info.Message != e.Message {
		return fmt.Sprintf("%s: %s", e.Message, e.Info.Message)
	}
	return e.Message
}

// Is reports whether target is the sentinel matching this error's kind
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Kind == KindRateLimit
	case ErrRequestFailed:
		return e.Kind == KindRequestFailed
	}
	return false
}

// IsRateLimit checks if the error was caused by an exhausted rate limit
func (e *APIError) IsRateLimit() bool {
	return e.Kind == KindRateLimit
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// ValidationError indicates a query was rejected before any network call
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
