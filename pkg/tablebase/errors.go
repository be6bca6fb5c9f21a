package tablebase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an error response from the Tablebase API.
type APIError struct {
	StatusCode int    `json:"-"       yaml:"-"`
	Type       string `json:"type"    yaml:"type"`
	Message    string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status: %d)", e.Type, e.Message, e.StatusCode)
}

// Machine-readable error types carried by APIError.
const (
	ErrorTypeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrorTypeNotFound               = "NOT_FOUND"
	ErrorTypeRateLimited            = "RATE_LIMITED"
	ErrorTypeInvalidRequest         = "INVALID_REQUEST"
	ErrorTypeServerError            = "SERVER_ERROR"
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrAPIKeyRequired       = errors.New("an API key is required to connect to Tablebase")
	ErrBaseIDRequired       = errors.New("base id is required")
	ErrTableRequired        = errors.New("table name or id is required")
	ErrRecordIDRequired     = errors.New("record id is required")
	ErrFieldsRequired       = errors.New("field values are required")
	ErrSkipTLSOnlyInDev     = errors.New("skipTLS is only allowed in development environments")
	ErrUnknownListParams    = errors.New("unknown list parameters")
	ErrInvalidListParam     = errors.New("invalid list parameter")
	ErrIterationExhausted   = errors.New("no more records")
	ErrPageListerRequired   = errors.New("page lister is required")
	ErrPageCallbackRequired = errors.New("page callback is required")
)

// IsNotFound checks if the error is a not-found error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrorTypeNotFound || apiErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsRateLimited checks if the error is a rate-limit error.
func IsRateLimited(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrorTypeRateLimited || apiErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}

// IsUnauthorized checks if the error is an authentication error.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrorTypeAuthenticationRequired ||
			apiErr.StatusCode == http.StatusUnauthorized ||
			apiErr.StatusCode == http.StatusForbidden
	}

	return false
}

// IsInvalidRequest checks if the error is a request-validation error reported
// by the service.
func IsInvalidRequest(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrorTypeInvalidRequest ||
			apiErr.StatusCode == http.StatusUnprocessableEntity
	}

	return false
}

// errorEnvelope is the wire shape of an error response. The error member is
// either an object with type/message or a bare string code.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

// ParseResponseError parses an error response body into an APIError. The body
// may carry a structured error object, a bare string code, or be unparseable,
// in which case a generic error for the status code is returned.
func ParseResponseError(statusCode int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Error) > 0 {
		var structured struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}

		if err := json.Unmarshal(envelope.Error, &structured); err == nil && structured.Type != "" {
			apiErr.Type = structured.Type
			apiErr.Message = structured.Message

			return apiErr
		}

		var code string
		if err := json.Unmarshal(envelope.Error, &code); err == nil && code != "" {
			apiErr.Type = code
			apiErr.Message = http.StatusText(statusCode)

			return apiErr
		}
	}

	apiErr.Type = defaultErrorType(statusCode)
	apiErr.Message = http.StatusText(statusCode)

	return apiErr
}

func defaultErrorType(statusCode int) string {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuthenticationRequired
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimited
	case statusCode >= http.StatusInternalServerError:
		return ErrorTypeServerError
	default:
		return ErrorTypeInvalidRequest
	}
}
