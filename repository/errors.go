package repository

import "errors"

var (
	// ErrItemNotFound is returned when a cart line does not exist for the session.
	ErrItemNotFound = errors.New("cart item not found")

	// ErrEmptyCart is returned when an order is built from a session with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrDuplicateOrder is returned when an order already exists for the payment session.
	ErrDuplicateOrder = errors.New("order already exists for payment session")

	// ErrOrderNotFound is returned when no order matches the lookup.
	ErrOrderNotFound = errors.New("order not found")

	// ErrProductNotFound is returned when no product matches the lookup.
	ErrProductNotFound = errors.New("product not found")
)
