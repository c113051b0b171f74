// Package lifecycle implements the table session and order lifecycle
// engine: carts, submitted orders, kitchen status progression and comanda
// aggregation. It performs no I/O and no logging; every operation either
// fully applies or fails with one of the sentinel errors below, leaving
// state untouched.
package lifecycle

import "errors"

var (
	// ErrNotFound means the referenced table session, order or product
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyOccupied means the table already has an active session.
	ErrAlreadyOccupied = errors.New("table already occupied")

	// ErrProductUnavailable means the product is unknown or inactive.
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrInvalidQuantity means a negative quantity was supplied.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrEmptyCart means submission was attempted with no cart lines.
	ErrEmptyCart = errors.New("empty cart")

	// ErrInvalidTransition means the order is already delivered.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStatusSkipped means a non-adjacent status was requested.
	ErrStatusSkipped = errors.New("status skipped")

	// ErrOutstandingOrders means close was attempted while at least one
	// order is not yet delivered.
	ErrOutstandingOrders = errors.New("outstanding orders")
)
