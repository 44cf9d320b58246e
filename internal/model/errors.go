package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases.
// Use errors.Is() to check against these.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUpstreamError  = errors.New("upstream error")
	ErrIntegrity      = errors.New("upstream integrity")
	ErrRateLimited    = errors.New("rate limited")
	ErrUnavailable    = errors.New("unavailable")
)

// APIError represents a structured error for API responses.
// Implements error interface and supports unwrapping.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // HTTP status, not serialized
	Err        error  `json:"-"` // Wrapped error, not serialized
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a 404 error for missing resources.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: 404,
		Err:        ErrNotFound,
	}
}

// NewValidationError creates a 400 error for an invalid input field.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: 400,
		Err:        ErrInvalidRequest,
	}
}

// NewBadRequestError creates a 400 error for requests the client must fix
// before retrying, such as a product locator without an id facet.
func NewBadRequestError(reason string) *APIError {
	return &APIError{
		Code:       "BAD_REQUEST",
		Message:    reason,
		StatusCode: 400,
		Err:        ErrInvalidRequest,
	}
}

// NewUpstreamError creates a 502 error for backend failures.
func NewUpstreamError(service string, err error) *APIError {
	return &APIError{
		Code:       "UPSTREAM_ERROR",
		Message:    fmt.Sprintf("%s request failed", service),
		StatusCode: 502,
		Err:        fmt.Errorf("%w: %v", ErrUpstreamError, err),
	}
}

// NewIntegrityError creates a 500 error for an upstream response that
// succeeded but is inconsistent with what was asked for. Usually a stale
// search index or a mismatch between search and checkout data.
func NewIntegrityError(service, reason string) *APIError {
	return &APIError{
		Code:       "UPSTREAM_INTEGRITY",
		Message:    fmt.Sprintf("%s: %s", service, reason),
		StatusCode: 500,
		Err:        ErrIntegrity,
	}
}

// NewMissingSkusError reports every sku id the search service failed to return.
func NewMissingSkusError(ids []string) *APIError {
	return NewIntegrityError("search",
		"did not return the following skus: "+strings.Join(ids, ","))
}

// NewNoSellersError creates a 422 error for a product that cannot be sold
// on the requested sales channel.
func NewNoSellersError(productID, channel string) *APIError {
	return &APIError{
		Code:       "NO_SELLERS",
		Message:    fmt.Sprintf("product with id %s has no sellers for channel %s", productID, channel),
		StatusCode: 422,
		Err:        ErrUnavailable,
	}
}

// NewInternalError creates a 500 error for unexpected failures.
func NewInternalError(err error) *APIError {
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: 500,
		Err:        err,
	}
}

// NewRateLimitError creates a 429 error for rate limiting.
func NewRateLimitError(service string) *APIError {
	return &APIError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("%s rate limit exceeded, please retry later", service),
		StatusCode: 429,
		Err:        ErrRateLimited,
	}
}
