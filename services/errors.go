package services

import (
	"fmt"
	"net/http"
)

// ServiceError represents an application error with an HTTP status mapping
type ServiceError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches ServiceErrors by status and message so wrapped copies still
// compare equal to the sentinel.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.StatusCode == e.StatusCode && t.Message == e.Message
}

// With returns a copy of the sentinel carrying an underlying cause.
func (e *ServiceError) With(err error) *ServiceError {
	return &ServiceError{StatusCode: e.StatusCode, Message: e.Message, Err: err}
}

var (
	ErrProductNotFound = &ServiceError{StatusCode: http.StatusNotFound, Message: "Product not found"}
	ErrVariantNotFound = &ServiceError{StatusCode: http.StatusNotFound, Message: "Product variant not found"}
	ErrItemNotFound    = &ServiceError{StatusCode: http.StatusNotFound, Message: "Cart item not found"}
	ErrOrderNotFound   = &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}

	ErrInvalidQuantity = &ServiceError{StatusCode: http.StatusBadRequest, Message: "Quantity must be at least 1"}
	ErrEmptyCart       = &ServiceError{StatusCode: http.StatusBadRequest, Message: "Cart is empty"}
	ErrNoCartSession   = &ServiceError{StatusCode: http.StatusBadRequest, Message: "No cart session"}

	ErrOutOfStock     = &ServiceError{StatusCode: http.StatusConflict, Message: "Insufficient stock"}
	ErrDuplicateOrder = &ServiceError{StatusCode: http.StatusConflict, Message: "Order already exists for this payment session"}

	ErrMissingCorrelation = &ServiceError{StatusCode: http.StatusUnprocessableEntity, Message: "Payment session has no cart reference"}
	ErrCartUnavailable    = &ServiceError{StatusCode: http.StatusUnprocessableEntity, Message: "Cart is no longer available"}

	ErrPaymentProvider = &ServiceError{StatusCode: http.StatusBadGateway, Message: "Payment provider error"}
)
