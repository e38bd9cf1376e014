package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrLinkNotFound is returned when no payment link matches the unique id.
	ErrLinkNotFound = errors.New("payment link not found")
	// ErrInvalidAmount is returned when a price or delivery cost does not parse.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrLinkExpired is returned when a payment link is older than its lifetime.
	ErrLinkExpired = errors.New("payment link expired")
	// ErrPaymentNotConfigured is returned when gateway credentials are absent.
	ErrPaymentNotConfigured = errors.New("payment system not configured")
	// ErrOrderNotCompleted is returned when a capture finishes in a non-paid state.
	ErrOrderNotCompleted = errors.New("payment not completed")
)

// GatewayError wraps a provider failure with its diagnostic detail.
// Detail is only surfaced to callers in sandbox mode.
type GatewayError struct {
	Op     string
	Detail string
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Detail != "" {
		return e.Op + ": " + e.Detail
	}
	return e.Op + ": gateway request failed"
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NewGatewayError creates a GatewayError for the given provider operation.
func NewGatewayError(op, detail string, err error) *GatewayError {
	return &GatewayError{Op: op, Detail: detail, Err: err}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var gw *GatewayError
	if errors.As(err, &gw) {
		return NewHTTPError(http.StatusBadGateway, "failed to create payment order", "GATEWAY_ERROR")
	}
	switch {
	case errors.Is(err, ErrLinkNotFound):
		return NewHTTPError(http.StatusNotFound, ErrLinkNotFound.Error(), "LINK_NOT_FOUND")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidAmount.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrLinkExpired):
		return NewHTTPError(http.StatusGone, ErrLinkExpired.Error(), "LINK_EXPIRED")
	case errors.Is(err, ErrPaymentNotConfigured):
		return NewHTTPError(http.StatusServiceUnavailable, ErrPaymentNotConfigured.Error(), "PAYMENT_NOT_CONFIGURED")
	case errors.Is(err, ErrOrderNotCompleted):
		return NewHTTPError(http.StatusBadRequest, ErrOrderNotCompleted.Error(), "ORDER_NOT_COMPLETED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
