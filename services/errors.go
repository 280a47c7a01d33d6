package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind identifies the failure category of a ServiceError. Controllers
// map the attached status code to HTTP; other callers can branch on Kind.
type ErrorKind string

const (
	KindValidation              ErrorKind = "validation"
	KindDeliveryNotFound        ErrorKind = "delivery_not_found"
	KindOrderNotFound           ErrorKind = "order_not_found"
	KindDuplicateDelivery       ErrorKind = "duplicate_delivery"
	KindAssociatedOrderNotFound ErrorKind = "associated_order_not_found"
	KindAssignment              ErrorKind = "assignment_failed"
	KindUpstreamTimeout         ErrorKind = "upstream_timeout"
	KindInternal                ErrorKind = "internal"
)

// ServiceError is a typed error with an HTTP status code and the original
// cause attached for logging.
type ServiceError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *ServiceError) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) a ServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// NewValidationError flags malformed input rejected before any store access.
func NewValidationError(message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, StatusCode: http.StatusBadRequest, Message: message}
}

// NewDeliveryNotFoundError flags an id that resolves to neither a real nor
// a synthesizable delivery.
func NewDeliveryNotFoundError(id string) *ServiceError {
	return &ServiceError{
		Kind:       KindDeliveryNotFound,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("delivery %s not found", id),
	}
}

// NewOrderNotFoundError flags a referenced order absent from the order DB.
func NewOrderNotFoundError(orderID string) *ServiceError {
	return &ServiceError{
		Kind:       KindOrderNotFound,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("order %s not found", orderID),
	}
}

// NewDuplicateDeliveryError flags creation when a delivery already exists
// for the order.
func NewDuplicateDeliveryError(orderID string) *ServiceError {
	return &ServiceError{
		Kind:       KindDuplicateDelivery,
		StatusCode: http.StatusConflict,
		Message:    fmt.Sprintf("delivery already exists for order %s", orderID),
	}
}

// NewAssociatedOrderNotFoundError flags the referential-integrity case of a
// real delivery whose linked order is gone.
func NewAssociatedOrderNotFoundError(orderID string) *ServiceError {
	return &ServiceError{
		Kind:       KindAssociatedOrderNotFound,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("order %s linked to delivery not found", orderID),
	}
}

// NewAssignmentError wraps any failure during the multi-step driver
// assignment flow.
func NewAssignmentError(message string, err error) *ServiceError {
	return &ServiceError{
		Kind:       KindAssignment,
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Err:        err,
	}
}

// NewUpstreamTimeoutError flags an external call exceeding its bound.
func NewUpstreamTimeoutError(message string, err error) *ServiceError {
	return &ServiceError{
		Kind:       KindUpstreamTimeout,
		StatusCode: http.StatusGatewayTimeout,
		Message:    message,
		Err:        err,
	}
}

// NewInternalError wraps an unexpected store or infrastructure failure.
func NewInternalError(message string, err error) *ServiceError {
	return &ServiceError{
		Kind:       KindInternal,
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Err:        err,
	}
}
