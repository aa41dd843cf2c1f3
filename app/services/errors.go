package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the shop services. Controllers translate
// these into HTTP status codes with errors.Is / errors.As.
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductUnavailable  = errors.New("product is not available")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrCartNotFound        = errors.New("cart not found")
	ErrItemNotFound        = errors.New("item not found in cart")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrAlreadyCancelled    = errors.New("order is already cancelled")
	ErrNotCancellable      = errors.New("order can no longer be cancelled")
	ErrUnknownStatus       = errors.New("unknown order status")
	ErrConcurrencyConflict = errors.New("stock changed, please retry")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrForbidden           = errors.New("not allowed")
)

// StockError names the product that blocked a checkout or cart update.
type StockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
