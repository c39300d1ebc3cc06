package service

import "errors"

var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrSessionExpired     = errors.New("session expired")
	ErrEmailTaken         = errors.New("email already registered")

	ErrProductUnavailable = errors.New("product is not available")
	ErrCategoryInUse      = errors.New("category still has products")

	ErrCartEmpty         = errors.New("cart is empty")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
)
